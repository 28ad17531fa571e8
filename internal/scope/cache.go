package scope

import (
	"sync"

	"studio-ledger/internal/models"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Snapshot holds one owner's (or, unfiltered, everyone's) collections.
type Snapshot struct {
	Projects []models.Project
	Clients  []models.Client
	Income   []models.IncomeRecord
	Expenses []models.Expense
}

// filterOwner returns the subset of the snapshot belonging to one owner.
// Owner 0 yields an empty snapshot, matching the admin no-selection view.
func (s Snapshot) filterOwner(owner uint) Snapshot {
	var out Snapshot
	for _, p := range s.Projects {
		if p.UserID == owner {
			out.Projects = append(out.Projects, p)
		}
	}
	for _, c := range s.Clients {
		if c.UserID == owner {
			out.Clients = append(out.Clients, c)
		}
	}
	for _, r := range s.Income {
		if r.UserID == owner {
			out.Income = append(out.Income, r)
		}
	}
	for _, e := range s.Expenses {
		if e.UserID == owner {
			out.Expenses = append(out.Expenses, e)
		}
	}
	return out
}

// Cache is the admin-only master cache: all owners' rows, fetched in one
// bulk load and filtered per selected user in memory. Switching the
// selection never re-fetches. Only the refresh routine writes the data;
// entity mutations go to the store and mark the cache stale.
type Cache struct {
	mu     sync.RWMutex
	sf     singleflight.Group
	data   Snapshot
	loaded bool
	stale  bool
}

func NewCache() *Cache {
	return &Cache{}
}

// MarkStale flags the cache for reload on the next read. Called after any
// entity mutation.
func (c *Cache) MarkStale() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// ensure loads or reloads the cache when needed. Concurrent callers share
// one in-flight refresh instead of issuing duplicate bulk fetches; a caller
// arriving while a refresh runs gets that refresh's result.
func (c *Cache) ensure(db *gorm.DB) error {
	c.mu.RLock()
	fresh := c.loaded && !c.stale
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	_, err, _ := c.sf.Do("refresh", func() (interface{}, error) {
		var snap Snapshot
		if err := db.Order("id ASC").Find(&snap.Projects).Error; err != nil {
			return nil, err
		}
		if err := db.Order("id ASC").Find(&snap.Clients).Error; err != nil {
			return nil, err
		}
		if err := db.Order("id ASC").Find(&snap.Income).Error; err != nil {
			return nil, err
		}
		if err := db.Order("id ASC").Find(&snap.Expenses).Error; err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.data = snap
		c.loaded = true
		c.stale = false
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// View returns the cached rows visible for one owner, refreshing first if
// the cache is stale or empty. Owner 0 returns the empty view.
func (c *Cache) View(db *gorm.DB, owner uint) (Snapshot, error) {
	if owner == 0 {
		return Snapshot{}, nil
	}
	if err := c.ensure(db); err != nil {
		return Snapshot{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.filterOwner(owner), nil
}

// All returns the unfiltered cache, used for cross-user admin statistics.
func (c *Cache) All(db *gorm.DB) (Snapshot, error) {
	if err := c.ensure(db); err != nil {
		return Snapshot{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data, nil
}
