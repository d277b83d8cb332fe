package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.StorageRepository = (*StorageRepo)(nil)
)

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ h handle }

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.h.do(func(st *state) error {
		for _, other := range st.companies {
			if other.INN == c.INN {
				return domain.ErrDuplicate
			}
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.h.do(func(st *state) error {
		if c, ok := st.companies[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) GetByINN(_ context.Context, inn string) (*entity.Company, error) {
	var out *entity.Company
	err := r.h.do(func(st *state) error {
		for _, c := range st.companies {
			if c.INN == inn {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.companies[c.ID]; !ok {
			return domain.ErrNotFound
		}
		for id, other := range st.companies {
			if id != c.ID && other.INN == c.INN {
				return domain.ErrDuplicate
			}
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) Delete(_ context.Context, id string) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.companies[id]; !ok {
			return domain.ErrNotFound
		}
		st.deleteCompany(id)
		return nil
	})
}

// UserRepo usuarios en memoria.
type UserRepo struct{ h handle }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.h.do(func(st *state) error {
		for _, other := range st.users {
			if other.Email == u.Email {
				return domain.ErrEmailAlreadyExists
			}
			if other.Username == u.Username {
				return domain.ErrDuplicate
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.h.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) find(match func(entity.User) bool) (*entity.User, error) {
	var out *entity.User
	err := r.h.do(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username })
}

func (r *UserRepo) AttachToCompany(_ context.Context, userID, companyID string, owner bool) (bool, error) {
	attached := false
	err := r.h.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if u.CompanyID != "" {
			return nil
		}
		if owner {
			for _, other := range st.users {
				if other.CompanyID == companyID && other.IsCompanyOwner {
					return domain.ErrDuplicate
				}
			}
		}
		u.CompanyID = companyID
		u.IsCompanyOwner = owner
		st.users[userID] = u
		attached = true
		return nil
	})
	return attached, err
}

func (r *UserRepo) DetachCompany(_ context.Context, companyID string) error {
	return r.h.do(func(st *state) error {
		for id, u := range st.users {
			if u.CompanyID == companyID {
				u.CompanyID = ""
				u.IsCompanyOwner = false
				st.users[id] = u
			}
		}
		return nil
	})
}

func (r *UserRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.User, error) {
	var list []entity.User
	err := r.h.do(func(st *state) error {
		for _, u := range st.users {
			if u.CompanyID == companyID {
				list = append(list, u)
			}
		}
		return nil
	})
	newestFirst(list, func(u entity.User) (time.Time, string) { return u.CreatedAt, u.ID })
	return pointers(list), err
}

// StorageRepo storages en memoria.
type StorageRepo struct{ h handle }

func (r *StorageRepo) Create(_ context.Context, s *entity.Storage) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.companies[s.CompanyID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.storages {
			if other.CompanyID == s.CompanyID {
				return domain.ErrDuplicate
			}
		}
		st.storages[s.ID] = *s
		return nil
	})
}

func (r *StorageRepo) GetByID(_ context.Context, id string) (*entity.Storage, error) {
	var out *entity.Storage
	err := r.h.do(func(st *state) error {
		if s, ok := st.storages[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *StorageRepo) GetByCompany(_ context.Context, companyID string) (*entity.Storage, error) {
	var out *entity.Storage
	err := r.h.do(func(st *state) error {
		for _, s := range st.storages {
			if s.CompanyID == companyID {
				s := s
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *StorageRepo) Update(_ context.Context, s *entity.Storage) error {
	return r.h.do(func(st *state) error {
		cur, ok := st.storages[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Address = s.Address
		cur.UpdatedAt = s.UpdatedAt
		st.storages[s.ID] = cur
		return nil
	})
}

func (r *StorageRepo) Delete(_ context.Context, id string) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.storages[id]; !ok {
			return domain.ErrNotFound
		}
		st.deleteStorage(id)
		return nil
	})
}

func pointers[T any](list []T) []*T {
	out := make([]*T, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out
}
