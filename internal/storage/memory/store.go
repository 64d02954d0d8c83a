// Package memory is a process-local storage.Store. It backs tests and the
// STORAGE_DRIVER=memory development mode; nothing survives a restart.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/lab-portal/internal/models"
	"github.com/hongminglow/lab-portal/internal/models/dto"
	"github.com/hongminglow/lab-portal/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	now    func() time.Time

	users        map[int64]models.User
	news         map[int64]models.News
	publications map[int64]models.Publication
	equipment    map[int64]models.Equipment
	team         map[int64]models.TeamMember
}

func New() *Store {
	return &Store{
		now:          time.Now,
		users:        map[int64]models.User{},
		news:         map[int64]models.News{},
		publications: map[int64]models.Publication{},
		equipment:    map[int64]models.Equipment{},
		team:         map[int64]models.TeamMember{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// paginate sorts items by less and cuts one page out of them.
func paginate[T any](items []T, p storage.Page, less func(a, b T) int) ([]T, int) {
	slices.SortFunc(items, less)
	total := len(items)
	start := (p.Page - 1) * p.Limit
	if start < 0 || start >= total {
		return []T{}, total
	}
	end := min(start+p.Limit, total)
	return items[start:end], total
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) UpdateRole(_ context.Context, id int64, role models.Role) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = s.now()
	s.users[id] = u
	return u, nil
}

// withAuthor resolves AuthorName the way the SQL join does.
func (s *Store) withAuthor(n models.News) models.News {
	n.AuthorName = ""
	if n.AuthorID != nil {
		n.AuthorName = s.users[*n.AuthorID].FullName
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}

func (s *Store) ListNews(_ context.Context, f storage.NewsFilter, p storage.Page) ([]models.News, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []models.News
	for _, n := range s.news {
		switch {
		case f.Status != "" && n.Status != f.Status:
		case f.Category != "" && n.Category != f.Category:
		case f.Featured != nil && n.Featured != *f.Featured:
		case f.Search != "" && !containsFold(n.Title, f.Search) && !containsFold(n.Content, f.Search):
		default:
			items = append(items, s.withAuthor(n))
		}
	}
	page, total := paginate(items, p, func(a, b models.News) int {
		switch {
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return -1
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return 1
		case a.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
			return b.PublishedAt.Compare(*a.PublishedAt)
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return page, total, nil
}

func (s *Store) GetNews(_ context.Context, id int64) (models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.news[id]
	if !ok {
		return models.News{}, storage.ErrNotFound
	}
	return s.withAuthor(n), nil
}

func (s *Store) CreateNews(_ context.Context, n models.News) (models.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.AuthorID != nil {
		if _, ok := s.users[*n.AuthorID]; !ok {
			return models.News{}, fmt.Errorf("create news: unknown author %d", *n.AuthorID)
		}
	}
	n.ID = s.id()
	n.CreatedAt = s.now()
	n.UpdatedAt = n.CreatedAt
	n.PublishedAt = nil
	if n.Status == models.NewsPublished {
		at := n.CreatedAt
		n.PublishedAt = &at
	}
	s.news[n.ID] = n
	return s.withAuthor(n), nil
}

func (s *Store) UpdateNews(_ context.Context, id int64, in dto.NewsInput) (models.News, error) {
	if in == (dto.NewsInput{}) {
		return models.News{}, storage.ErrNoChanges
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.news[id]
	if !ok {
		return models.News{}, storage.ErrNotFound
	}
	if in.Title != nil {
		n.Title = *in.Title
	}
	if in.Content != nil {
		n.Content = *in.Content
	}
	if in.Excerpt != nil {
		n.Excerpt = *in.Excerpt
	}
	if in.Category != nil {
		n.Category = *in.Category
	}
	if in.Tags != nil {
		n.Tags = slices.Clone(*in.Tags)
	}
	if in.Featured != nil {
		n.Featured = *in.Featured
	}
	if in.ImageURL != nil {
		n.ImageURL = *in.ImageURL
	}
	n.UpdatedAt = s.now()
	if in.Status != nil {
		if n.Status != models.NewsPublished && *in.Status == models.NewsPublished {
			at := n.UpdatedAt
			n.PublishedAt = &at
		}
		n.Status = *in.Status
	}
	s.news[id] = n
	return s.withAuthor(n), nil
}

func (s *Store) DeleteNews(_ context.Context, id int64) (models.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.news[id]
	if !ok {
		return models.News{}, storage.ErrNotFound
	}
	delete(s.news, id)
	return s.withAuthor(n), nil
}

func (s *Store) ListPublications(_ context.Context, f storage.PublicationFilter, p storage.Page) ([]models.Publication, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []models.Publication
	for _, pub := range s.publications {
		switch {
		case f.Status != "" && pub.Status != f.Status:
		case f.Type != "" && pub.Type != f.Type:
		case f.Category != "" && pub.Category != f.Category:
		case f.Year != 0 && pub.Year != f.Year:
		case f.Search != "" && !containsFold(pub.Title, f.Search) && !containsFold(pub.Authors, f.Search) && !containsFold(pub.Abstract, f.Search):
		default:
			items = append(items, pub)
		}
	}
	page, total := paginate(items, p, func(a, b models.Publication) int {
		return cmp.Or(cmp.Compare(b.Year, a.Year), cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})
	return page, total, nil
}

func (s *Store) GetPublication(_ context.Context, id int64) (models.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.publications[id]
	if !ok {
		return models.Publication{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreatePublication(_ context.Context, p models.Publication) (models.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.publications[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePublication(_ context.Context, p models.Publication) (models.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.publications[p.ID]
	if !ok {
		return models.Publication{}, storage.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = s.now()
	s.publications[p.ID] = p
	return p, nil
}

func (s *Store) DeletePublication(_ context.Context, id int64) (models.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publications[id]
	if !ok {
		return models.Publication{}, storage.ErrNotFound
	}
	delete(s.publications, id)
	return p, nil
}

func (s *Store) DistinctPublicationValues(_ context.Context, column string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var years []int
	values := []string{}
	for _, p := range s.publications {
		if p.Status != "published" {
			continue
		}
		var v string
		switch column {
		case "type":
			v = p.Type
		case "category":
			v = p.Category
		case "year":
			v = strconv.Itoa(p.Year)
		default:
			return nil, fmt.Errorf("distinct publication values: unsupported column %q", column)
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		if column == "year" {
			years = append(years, p.Year)
			continue
		}
		values = append(values, v)
	}
	if column == "year" {
		slices.Sort(years)
		slices.Reverse(years)
		for _, y := range years {
			values = append(values, strconv.Itoa(y))
		}
		return values, nil
	}
	slices.Sort(values)
	return values, nil
}

func (s *Store) ListEquipment(_ context.Context, f storage.EquipmentFilter, p storage.Page) ([]models.Equipment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []models.Equipment
	for _, e := range s.equipment {
		if (f.Category == "" || e.Category == f.Category) && (f.Status == "" || e.Status == f.Status) {
			items = append(items, e)
		}
	}
	page, total := paginate(items, p, func(a, b models.Equipment) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return page, total, nil
}

func (s *Store) GetEquipment(_ context.Context, id int64) (models.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.equipment[id]
	if !ok {
		return models.Equipment{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEquipment(_ context.Context, e models.Equipment) (models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	s.equipment[e.ID] = e
	return e, nil
}

func (s *Store) UpdateEquipment(_ context.Context, e models.Equipment) (models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.equipment[e.ID]
	if !ok {
		return models.Equipment{}, storage.ErrNotFound
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = s.now()
	s.equipment[e.ID] = e
	return e, nil
}

func (s *Store) DeleteEquipment(_ context.Context, id int64) (models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.equipment[id]
	if !ok {
		return models.Equipment{}, storage.ErrNotFound
	}
	delete(s.equipment, id)
	return e, nil
}

func (s *Store) EquipmentCategories(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	for _, e := range s.equipment {
		if e.Category != "" && !slices.Contains(out, e.Category) {
			out = append(out, e.Category)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) ListTeam(_ context.Context, f storage.TeamFilter, p storage.Page) ([]models.TeamMember, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []models.TeamMember
	for _, m := range s.team {
		if f.Active == nil || m.Active == *f.Active {
			items = append(items, m)
		}
	}
	page, total := paginate(items, p, func(a, b models.TeamMember) int {
		return cmp.Or(cmp.Compare(a.OrderIndex, b.OrderIndex), cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return page, total, nil
}

func (s *Store) GetTeamMember(_ context.Context, id int64) (models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.team[id]
	if !ok {
		return models.TeamMember{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *Store) CreateTeamMember(_ context.Context, m models.TeamMember) (models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.team[m.ID] = m
	return m, nil
}

func (s *Store) UpdateTeamMember(_ context.Context, m models.TeamMember) (models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.team[m.ID]
	if !ok {
		return models.TeamMember{}, storage.ErrNotFound
	}
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = s.now()
	s.team[m.ID] = m
	return m, nil
}

func (s *Store) DeleteTeamMember(_ context.Context, id int64) (models.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.team[id]
	if !ok {
		return models.TeamMember{}, storage.ErrNotFound
	}
	delete(s.team, id)
	return m, nil
}
