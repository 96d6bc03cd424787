// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eclc/collection-engine/collections"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements collections.Store without a database. It mirrors the
// SQLite store's semantics: identifier generation, insert-or-ignore on
// account numbers, and the outstanding-set join.
type Memory struct {
	mu           sync.RWMutex
	nextPeriod   int64
	nextConsult  int64
	periods      map[int64]collections.Period
	collectibles map[int64]collections.Collectible
	admins       map[string]collections.Admin
	consultants  map[int64]collections.Consultant
	runs         []collections.ImportRun
}

// NewMemory creates an empty in-memory store. No admin is seeded; tests
// that need one call SeedAdmin.
func NewMemory() *Memory {
	return &Memory{
		periods:      make(map[int64]collections.Period),
		collectibles: make(map[int64]collections.Collectible),
		admins:       make(map[string]collections.Admin),
		consultants:  make(map[int64]collections.Consultant),
	}
}

// SeedAdmin installs an admin credential record.
func (m *Memory) SeedAdmin(username, passwordHash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[username] = collections.Admin{Username: username, PasswordHash: passwordHash}
}

func (m *Memory) CreatePeriod(_ context.Context, date time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPeriod++
	id := m.nextPeriod
	m.periods[id] = collections.Period{ID: id, Date: date}
	return id, nil
}

func (m *Memory) PeriodByID(_ context.Context, id int64) (*collections.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.periods[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) LatestPeriod(_ context.Context) (*collections.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *collections.Period
	for id := range m.periods {
		p := m.periods[id]
		if latest == nil || p.ID > latest.ID {
			latest = &p
		}
	}
	return latest, nil
}

func (m *Memory) ListPeriods(_ context.Context) ([]collections.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	periods := make([]collections.Period, 0, len(m.periods))
	for _, p := range m.periods {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].ID < periods[j].ID })
	return periods, nil
}

func (m *Memory) MarkPeriodExported(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.periods[id]
	if !ok {
		return collections.ErrPeriodNotFound
	}
	p.Exported = true
	m.periods[id] = p
	return nil
}

func (m *Memory) InsertCollectible(_ context.Context, c collections.Collectible) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collectibles[c.AccountNumber]; exists {
		return false, nil
	}
	if _, ok := m.periods[c.PeriodID]; !ok {
		// Matches the SQLite foreign key on period_id.
		return false, collections.ErrPeriodNotFound
	}
	m.collectibles[c.AccountNumber] = c
	return true, nil
}

func (m *Memory) CollectibleByAccount(_ context.Context, accountNumber int64) (*collections.Collectible, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collectibles[accountNumber]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) ListOutstanding(_ context.Context) ([]collections.Collectible, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []collections.Collectible
	for _, c := range m.collectibles {
		if c.Printed {
			continue
		}
		if p, ok := m.periods[c.PeriodID]; ok && !p.Exported {
			out = append(out, c)
		}
	}
	sortByAccount(out)
	return out, nil
}

func (m *Memory) ListCollectiblesByPeriod(_ context.Context, periodID int64) ([]collections.Collectible, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []collections.Collectible
	for _, c := range m.collectibles {
		if c.PeriodID == periodID {
			out = append(out, c)
		}
	}
	sortByAccount(out)
	return out, nil
}

func (m *Memory) ListCollectibles(_ context.Context) ([]collections.Collectible, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]collections.Collectible, 0, len(m.collectibles))
	for _, c := range m.collectibles {
		out = append(out, c)
	}
	sortByAccount(out)
	return out, nil
}

func (m *Memory) UnprintedAccounts(_ context.Context, periodID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var accounts []int64
	for _, c := range m.collectibles {
		if c.PeriodID == periodID && !c.Printed {
			accounts = append(accounts, c.AccountNumber)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	return accounts, nil
}

func (m *Memory) MarkPrinted(_ context.Context, accountNumber int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collectibles[accountNumber]
	if !ok {
		return collections.ErrCollectibleNotFound
	}
	c.Printed = true
	m.collectibles[accountNumber] = c
	return nil
}

func (m *Memory) AdminByUsername(_ context.Context, username string) (*collections.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.admins[username]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) AddConsultant(_ context.Context, c collections.Consultant) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextConsult++
	c.ID = m.nextConsult
	m.consultants[c.ID] = c
	return c.ID, nil
}

func (m *Memory) ConsultantByName(_ context.Context, name string) (*collections.Consultant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.consultants {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListConsultants(_ context.Context) ([]collections.Consultant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]collections.Consultant, 0, len(m.consultants))
	for _, c := range m.consultants {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) SaveImportRun(_ context.Context, run collections.ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	return nil
}

func (m *Memory) ListImportRuns(_ context.Context) ([]collections.ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]collections.ImportRun, len(m.runs))
	copy(out, m.runs)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func sortByAccount(cs []collections.Collectible) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].AccountNumber < cs[j].AccountNumber })
}
