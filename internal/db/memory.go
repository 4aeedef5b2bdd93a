package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// MemoryStore is a process-local Store. It enforces the same unique constraints
// as the SQL schema (user email, invite code, access token) and cascades deletes
// the way the foreign keys do. Used in development mode and in tests.
type MemoryStore struct {
	mu sync.RWMutex

	now func() time.Time

	nextUserID int
	users      map[int]model.User
	displays   map[string]model.Display
	media      map[string]model.Media
	playlists  map[string]model.Playlist
	items      map[string]model.PlaylistItem
	schedules  map[string]model.Schedule
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:       time.Now,
		users:     make(map[int]model.User),
		displays:  make(map[string]model.Display),
		media:     make(map[string]model.Media),
		playlists: make(map[string]model.Playlist),
		items:     make(map[string]model.PlaylistItem),
		schedules: make(map[string]model.Schedule),
	}
}

// --- users

func (m *MemoryStore) CreateUser(_ context.Context, email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return 0, ErrDuplicate
		}
	}
	m.nextUserID++
	now := m.now()
	m.users[m.nextUserID] = model.User{
		ID:             m.nextUserID,
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return m.nextUserID, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(_ context.Context, id int) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// --- displays

func (m *MemoryStore) CreateDisplay(_ context.Context, name, inviteCode, resolution string, clientID int) (model.Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.displays {
		if d.InviteCode == inviteCode {
			return model.Display{}, ErrDuplicate
		}
	}
	now := m.now()
	d := model.Display{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: inviteCode,
		ClientID:   clientID,
		Resolution: resolution,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.displays[d.ID] = d
	return d, nil
}

func (m *MemoryStore) ListDisplays(_ context.Context, clientID int) ([]model.Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Display{}
	for _, d := range m.displays {
		if d.ClientID == clientID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListDisplaysByPlaylist(_ context.Context, playlistID string) ([]model.Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Display{}
	for _, d := range m.displays {
		if d.AssignedPlaylistID != nil && *d.AssignedPlaylistID == playlistID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetDisplay(_ context.Context, id string) (model.Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.displays[id]
	if !ok {
		return model.Display{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryStore) DeleteDisplay(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.displays[id]; !ok {
		return ErrNotFound
	}
	delete(m.displays, id)
	for sid, s := range m.schedules {
		if s.DisplayID == id {
			delete(m.schedules, sid)
		}
	}
	return nil
}

func (m *MemoryStore) FindDisplayByInviteCode(_ context.Context, code string) (model.Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.displays {
		if d.InviteCode == code {
			return d, nil
		}
	}
	return model.Display{}, ErrNotFound
}

func (m *MemoryStore) FindDisplayByAccessToken(_ context.Context, token string) (model.Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.displays {
		if d.AccessToken != nil && *d.AccessToken == token {
			return d, nil
		}
	}
	return model.Display{}, ErrNotFound
}

func (m *MemoryStore) SetDisplayLinked(_ context.Context, id, accessToken string, checkIn time.Time) (model.Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.displays[id]
	if !ok {
		return model.Display{}, ErrNotFound
	}
	for otherID, other := range m.displays {
		if otherID != id && other.AccessToken != nil && *other.AccessToken == accessToken {
			return model.Display{}, ErrDuplicate
		}
	}
	token := accessToken
	d.AccessToken = &token
	d.IsLinked = true
	d.LastCheckIn = &checkIn
	d.UpdatedAt = m.now()
	m.displays[id] = d
	return d, nil
}

func (m *MemoryStore) UpdateLastCheckIn(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.displays[id]
	if !ok {
		return ErrNotFound
	}
	d.LastCheckIn = &at
	m.displays[id] = d
	return nil
}

// --- media

func (m *MemoryStore) CreateMedia(_ context.Context, in model.Media) (model.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	in.ID = uuid.NewString()
	in.CreatedAt = now
	in.UpdatedAt = now
	m.media[in.ID] = in
	return in, nil
}

func (m *MemoryStore) ListMedia(_ context.Context, clientID int) ([]model.Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Media{}
	for _, x := range m.media {
		if x.ClientID == clientID {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetMedia(_ context.Context, id string) (model.Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	x, ok := m.media[id]
	if !ok {
		return model.Media{}, ErrNotFound
	}
	return x, nil
}

// --- playlists

func (m *MemoryStore) CreatePlaylist(_ context.Context, name string, clientID int) (model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p := model.Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		ClientID:  clientID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.playlists[p.ID] = p
	return p, nil
}

func (m *MemoryStore) ListPlaylists(_ context.Context, clientID int) ([]model.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Playlist{}
	for _, p := range m.playlists {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetPlaylist(_ context.Context, id string) (model.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.playlists[id]
	if !ok {
		return model.Playlist{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) CreatePlaylistItem(_ context.Context, item model.PlaylistItem) (model.PlaylistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playlists[item.PlaylistID]; !ok {
		return model.PlaylistItem{}, ErrNotFound
	}
	if _, ok := m.media[item.MediaID]; !ok {
		return model.PlaylistItem{}, ErrNotFound
	}
	item.ID = uuid.NewString()
	item.CreatedAt = m.now()
	m.items[item.ID] = item
	return item, nil
}

func (m *MemoryStore) ListPlaylistItems(_ context.Context, playlistID string) ([]model.PlaylistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.itemsOf(playlistID), nil
}

// itemsOf must be called with mu held.
func (m *MemoryStore) itemsOf(playlistID string) []model.PlaylistItem {
	out := []model.PlaylistItem{}
	for _, it := range m.items {
		if it.PlaylistID == playlistID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *MemoryStore) GetPlaylistItem(_ context.Context, id string) (model.PlaylistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[id]
	if !ok {
		return model.PlaylistItem{}, ErrNotFound
	}
	return it, nil
}

func (m *MemoryStore) DeletePlaylistItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryStore) GetAssignedPlaylistItems(_ context.Context, displayID string) ([]model.ActivePlaylistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.ActivePlaylistItem{}
	d, ok := m.displays[displayID]
	if !ok || d.AssignedPlaylistID == nil {
		return out, nil
	}
	for _, it := range m.itemsOf(*d.AssignedPlaylistID) {
		media, ok := m.media[it.MediaID]
		if !ok {
			continue
		}
		out = append(out, model.ActivePlaylistItem{PlaylistItem: it, Media: media})
	}
	return out, nil
}

// --- schedules

func (m *MemoryStore) CreateSchedule(_ context.Context, s model.Schedule) (model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.displays[s.DisplayID]
	if !ok {
		return model.Schedule{}, ErrNotFound
	}
	if _, ok := m.playlists[s.PlaylistID]; !ok {
		return model.Schedule{}, ErrNotFound
	}

	now := m.now()
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.schedules[s.ID] = s

	playlistID := s.PlaylistID
	d.AssignedPlaylistID = &playlistID
	d.UpdatedAt = now
	m.displays[d.ID] = d
	return s, nil
}

func (m *MemoryStore) ListSchedules(_ context.Context, clientID int) ([]model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Schedule{}
	for _, s := range m.schedules {
		if d, ok := m.displays[s.DisplayID]; ok && d.ClientID == clientID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetSchedule(_ context.Context, id string) (model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.schedules[id]
	if !ok {
		return model.Schedule{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) DeleteSchedule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}
