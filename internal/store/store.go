// Package store owns the in-memory collection of transactions, categories
// and settings for the current session. All mutation goes through its
// operations; each one touches the collection only after the corresponding
// backend call has succeeded, so a failure always leaves the last
// known-good state in place.
package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/gateway"
	applog "fintrack/internal/log"
	"fintrack/internal/prefs"
)

// SessionInfo is the slice of session state the store needs: whether a
// remote settings record exists to read and write.
type SessionInfo interface {
	Authenticated() bool
}

const sortedTTL = 5 * time.Minute

type Store struct {
	api     gateway.API
	prefs   *prefs.Store
	session SessionInfo
	logger  *applog.Logger

	mu           sync.Mutex
	transactions []core.Transaction
	categories   []core.Category
	settings     core.Settings
	darkMode     bool

	// Backend-sorted sequences, keyed by sort order. Discarded when the
	// order goes back to ignore; stale entries age out on their own.
	sorted *cache.TTL[[]core.Transaction]

	saveWG sync.WaitGroup
}

func New(ctx context.Context, api gateway.API, store *prefs.Store, sess SessionInfo, logger *applog.Logger) (*Store, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	dark, err := store.DarkMode(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{
		api:      api,
		prefs:    store,
		session:  sess,
		logger:   logger.WithComponent(applog.ComponentStore),
		darkMode: dark,
		settings: core.Settings{DarkMode: dark},
		sorted:   cache.NewTTL[[]core.Transaction](sortedTTL),
	}, nil
}

// Load fetches transactions, categories and settings concurrently and
// replaces the store contents wholesale. The server's dark-mode value
// becomes the active theme only for authenticated sessions; guests keep
// the locally persisted theme.
//
// Overlapping Load calls are not de-duplicated: the last one to resolve
// wins, even if it was not the last one issued.
func (s *Store) Load(ctx context.Context) error {
	var (
		ts   []core.Transaction
		cats []core.Category
		sett core.Settings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ts, err = s.api.ListTransactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.api.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sett, err = s.api.GetSettings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "load failed",
			applog.FieldOperation, applog.OpLoad, applog.FieldError, err)
		return err
	}

	authed := s.session.Authenticated()

	s.mu.Lock()
	s.transactions = dedupeByID(ts)
	s.categories = cats
	s.settings = sett
	if authed {
		s.darkMode = sett.DarkMode
	}
	dark := s.darkMode
	s.mu.Unlock()

	if authed {
		if err := s.prefs.SetDarkMode(ctx, dark); err != nil {
			s.logger.WarnContext(ctx, "persist theme failed", applog.FieldError, err)
		}
	}

	s.logger.InfoContext(ctx, "store loaded",
		applog.FieldOperation, applog.OpLoad, applog.FieldCount, len(ts))
	return nil
}

// Add creates the transaction remotely and appends the record that came
// back, server-assigned identifier included. The collection is not
// re-sorted.
func (s *Store) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.api.CreateTransaction(ctx, d)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.transactions = upsert(s.transactions, created)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "transaction added",
		applog.FieldOperation, applog.OpAdd, applog.FieldTransactionID, created.ID)
	return created, nil
}

// Update replaces the matching record and then reloads the full list so
// any server-side derived fields are reflected. Add and Remove do not
// reload; the asymmetry is deliberate.
func (s *Store) Update(ctx context.Context, id int64, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.api.UpdateTransaction(ctx, id, d)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.transactions = upsert(s.transactions, updated)
	s.mu.Unlock()

	// The update itself succeeded; a failed refresh keeps the locally
	// patched record rather than reverting anything.
	refreshed, err := s.api.ListTransactions(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "post-update refresh failed",
			applog.FieldOperation, applog.OpUpdate, applog.FieldError, err)
		return updated, nil
	}
	s.mu.Lock()
	s.transactions = dedupeByID(refreshed)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "transaction updated",
		applog.FieldOperation, applog.OpUpdate, applog.FieldTransactionID, id)
	return updated, nil
}

// Remove deletes the identifier set remotely, then filters it out locally.
func (s *Store) Remove(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.api.DeleteTransactions(ctx, ids); err != nil {
		return err
	}

	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	kept := s.transactions[:0]
	for _, t := range s.transactions {
		if _, gone := drop[t.ID]; !gone {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "transactions removed",
		applog.FieldOperation, applog.OpRemove, applog.FieldCount, len(ids))
	return nil
}

// ToggleTheme flips the dark-mode flag. The local flip is the source of
// truth: it is persisted to the preference store immediately, and for
// authenticated sessions the backend copy is updated in the background —
// a remote failure is logged, never surfaced, and never reverts the flip.
func (s *Store) ToggleTheme(ctx context.Context) bool {
	s.mu.Lock()
	s.darkMode = !s.darkMode
	s.settings.DarkMode = s.darkMode
	next := s.darkMode
	s.mu.Unlock()

	if err := s.prefs.SetDarkMode(ctx, next); err != nil {
		s.logger.WarnContext(ctx, "persist theme failed",
			applog.FieldOperation, applog.OpTheme, applog.FieldError, err)
	}

	if s.session.Authenticated() {
		s.saveWG.Add(1)
		go func() {
			defer s.saveWG.Done()
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.api.SaveSettings(saveCtx, core.Settings{DarkMode: next}); err != nil {
				s.logger.Warn("remote theme save failed",
					applog.FieldOperation, applog.OpTheme, applog.FieldError, err)
			}
		}()
	}

	s.logger.InfoContext(ctx, "theme toggled",
		applog.FieldOperation, applog.OpTheme, applog.FieldDarkMode, next)
	return next
}

// Sort activates a backend-delegated sort order. Ignore discards any
// cached sorted sequence; other orders fetch and cache one. A fetch
// failure also discards the cache so the view falls back to identifier
// order.
func (s *Store) Sort(ctx context.Context, order core.SortOrder) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if order == core.SortIgnore {
		s.sorted.Clear()
		return nil
	}

	ts, err := s.api.ListTransactionsSorted(ctx, order)
	if err != nil {
		s.sorted.Clear()
		s.logger.ErrorContext(ctx, "sorted fetch failed",
			applog.FieldOperation, applog.OpSort, applog.FieldSortOrder, string(order), applog.FieldError, err)
		return err
	}
	s.sorted.Set(string(order), dedupeByID(ts))
	return nil
}

// View derives the visible list: the cached backend-sorted sequence when
// the given order is active and cached, otherwise the collection in
// identifier order, then the filter on top. Pure with respect to the
// store; it never mutates anything.
func (s *Store) View(f core.Filter, order core.SortOrder) []core.Transaction {
	base := core.SortByID(s.Transactions())
	if order != core.SortIgnore && order != "" {
		if cached, ok := s.sorted.Get(string(order)); ok {
			base = cached
		}
	}
	return f.Apply(base)
}

// Summary aggregates over the full unfiltered collection.
func (s *Store) Summary() core.Summary {
	return core.Summarize(s.Transactions())
}

// Clear empties the session's data on logout. The active theme survives;
// it belongs to the device, not the account.
func (s *Store) Clear() {
	s.mu.Lock()
	s.transactions = nil
	s.categories = nil
	s.settings = core.Settings{DarkMode: s.darkMode}
	s.mu.Unlock()
	s.sorted.Clear()
}

func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

func (s *Store) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Store) Settings() core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.darkMode
}

// Find returns the record with the given identifier, if present.
func (s *Store) Find(id int64) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// Wait blocks until background settings saves have finished.
func (s *Store) Wait() {
	s.saveWG.Wait()
}

// upsert appends t, replacing any existing record with the same
// identifier so the collection never holds duplicates.
func upsert(ts []core.Transaction, t core.Transaction) []core.Transaction {
	for i := range ts {
		if ts[i].ID == t.ID {
			ts[i] = t
			return ts
		}
	}
	return append(ts, t)
}

func dedupeByID(ts []core.Transaction) []core.Transaction {
	seen := make(map[int64]int, len(ts))
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if i, dup := seen[t.ID]; dup {
			out[i] = t
			continue
		}
		seen[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}
