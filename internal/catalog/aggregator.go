// Package catalog loads and caches the cross-screen reference data:
// branches, services, patients, and specialists. One fetch feeds every
// screen; invalidation is explicit, there is no TTL.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

// Catalog is the merged result of the four list calls.
type Catalog struct {
	Branches    []api.Branch
	Services    []api.Service
	Patients    []api.Patient
	Specialists []api.User
}

// Aggregator fans the list calls out concurrently and replays the merged
// result until Invalidate or a forced refresh.
type Aggregator struct {
	client *api.Client
	logger *logging.Logger

	mu     sync.Mutex
	cached *Catalog
}

func NewAggregator(client *api.Client, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Aggregator{client: client, logger: logger}
}

// Get returns the cached catalog, fetching on first use or when forced.
// The four list calls run concurrently behind an all-complete barrier; any
// single failure fails the whole join and leaves the old cache in place.
func (a *Aggregator) Get(ctx context.Context, force bool) (*Catalog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil && !force {
		return a.cached, nil
	}

	var (
		wg       sync.WaitGroup
		branches []api.Branch
		services []api.Service
		patients []api.Patient
		users    []api.User
		errs     [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		branches, errs[0] = a.client.ListBranches(ctx)
	}()
	go func() {
		defer wg.Done()
		services, errs[1] = a.client.ListServices(ctx)
	}()
	go func() {
		defer wg.Done()
		patients, errs[2] = a.client.ListPatients(ctx)
	}()
	go func() {
		defer wg.Done()
		users, errs[3] = a.client.ListUsers(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	specialists := make([]api.User, 0, len(users))
	for _, u := range users {
		if u.Role == api.RoleSpecialist && u.Active {
			specialists = append(specialists, u)
		}
	}
	sort.Slice(specialists, func(i, j int) bool {
		return strings.ToLower(displayUserName(specialists[i])) < strings.ToLower(displayUserName(specialists[j]))
	})

	a.cached = &Catalog{
		Branches:    branches,
		Services:    services,
		Patients:    patients,
		Specialists: specialists,
	}
	a.logger.Debug("catalog loaded",
		"branches", len(branches),
		"services", len(services),
		"patients", len(patients),
		"specialists", len(specialists),
	)
	return a.cached, nil
}

// Invalidate drops the cache; the next Get refetches.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}

func displayUserName(u api.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
