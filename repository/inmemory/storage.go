package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"
)

// Storage keeps users, projects and tasks in process memory. Each method
// holds the lock for its whole body, so every mutation is all-or-nothing.
type Storage struct {
	mu sync.RWMutex

	users    map[int64]models.User
	projects map[int64]models.Project
	tasks    map[int64]models.Task

	nextUserID    int64
	nextProjectID int64
	nextTaskID    int64

	now func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		users:    make(map[int64]models.User),
		projects: make(map[int64]models.Project),
		tasks:    make(map[int64]models.Task),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	if user.Role.IsZero() {
		return errors.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, 0) {
		return errors.ErrEmailAlreadyExists
	}

	s.nextUserID++
	now := s.now()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) ListUsers(_ context.Context, page models.PageRequest) ([]models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return paginate(users, page), len(users), nil
}

func (s *Storage) UpdateUser(_ context.Context, user *models.User) error {
	if user.Role.IsZero() {
		return errors.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	if !exists {
		return errors.ErrUserNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return errors.ErrEmailAlreadyExists
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()
	if user.PasswordHash == "" {
		user.PasswordHash = existing.PasswordHash
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return errors.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Storage) emailTaken(email string, exceptID int64) bool {
	for id, user := range s.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}

func (s *Storage) CreateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProjectID++
	project.ID = s.nextProjectID
	s.projects[project.ID] = cloneProject(*project)
	return nil
}

func (s *Storage) GetProjectByID(_ context.Context, id int64) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, exists := s.projects[id]
	if !exists {
		return nil, errors.ErrProjectNotFound
	}
	project = cloneProject(project)
	return &project, nil
}

func (s *Storage) ListProjects(_ context.Context, page models.PageRequest) ([]models.Project, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]models.Project, 0, len(s.projects))
	for _, project := range s.projects {
		projects = append(projects, cloneProject(project))
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })

	return paginate(projects, page), len(projects), nil
}

func (s *Storage) UpdateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ID]; !exists {
		return errors.ErrProjectNotFound
	}
	s.projects[project.ID] = cloneProject(*project)
	return nil
}

// DeleteProject removes the project together with all of its tasks.
func (s *Storage) DeleteProject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[id]; !exists {
		return errors.ErrProjectNotFound
	}
	for taskID, task := range s.tasks {
		if task.ProjectID == id {
			delete(s.tasks, taskID)
		}
	}
	delete(s.projects, id)
	return nil
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[task.ProjectID]; !exists {
		return errors.ErrProjectNotFound
	}

	s.nextTaskID++
	task.ID = s.nextTaskID
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *Storage) ListTasksByProject(_ context.Context, projectID int64, page models.PageRequest) ([]models.Task, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.projects[projectID]; !exists {
		return nil, 0, errors.ErrProjectNotFound
	}

	var tasks []models.Task
	for _, task := range s.tasks {
		if task.ProjectID == projectID {
			tasks = append(tasks, cloneTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	return paginate(tasks, page), len(tasks), nil
}

func paginate[T any](items []T, page models.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + page.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneProject(p models.Project) models.Project {
	p.Description = cloneString(p.Description)
	return p
}

func cloneTask(t models.Task) models.Task {
	t.Description = cloneString(t.Description)
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
