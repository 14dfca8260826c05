package company

import (
	"context"
	"errors"
	"testing"

	"smm-planner/internal/domain"
)

type stubRepo struct {
	created []domain.Company
}

func (s *stubRepo) CreateCompany(_ context.Context, c domain.Company) (domain.Company, error) {
	c.ID = int64(len(s.created) + 1)
	s.created = append(s.created, c)
	return c, nil
}
func (s *stubRepo) GetCompany(_ context.Context, id int64) (domain.Company, error) {
	for _, c := range s.created {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Company{}, domain.ErrNotFound
}
func (s *stubRepo) LatestCompany(context.Context) (domain.Company, error) {
	if len(s.created) == 0 {
		return domain.Company{}, domain.ErrNotFound
	}
	return s.created[len(s.created)-1], nil
}
func (s *stubRepo) ListCompanies(context.Context) ([]domain.Company, error) { return s.created, nil }

func TestCreateValidates(t *testing.T) {
	svc := NewService(&stubRepo{})
	cases := []domain.Company{
		{Name: "", SiteURL: "https://acme.example"},
		{Name: "Acme", SiteURL: " "},
		{Name: "Acme", SiteURL: "acme"},
	}
	for _, c := range cases {
		if _, err := svc.Create(context.Background(), c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("ожидали ErrInvalidInput для %+v, получили %v", c, err)
		}
	}
}

func TestCreateCompactsMapsAndLatest(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	if _, err := svc.Latest(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound без компаний")
	}
	saved, err := svc.Create(context.Background(), domain.Company{
		Name:    " Acme Fibre ",
		SiteURL: "https://acme.example",
		Socials: map[string]string{"facebook": "acme", "x": ""},
		Colors:  map[string]string{"primary": "#f00", "": "#000"},
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if saved.Name != "Acme Fibre" || len(saved.Socials) != 1 || len(saved.Colors) != 1 {
		t.Fatalf("неожиданный профиль: %+v", saved)
	}
	latest, err := svc.Latest(context.Background())
	if err != nil || latest.ID != saved.ID {
		t.Fatalf("ожидали последнюю компанию %d, получили %+v (%v)", saved.ID, latest, err)
	}
}

func TestList(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	for _, name := range []string{"Acme", "Beta"} {
		if _, err := svc.Create(context.Background(), domain.Company{Name: name, SiteURL: "https://" + name + ".example"}); err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}
	got, err := svc.List(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("ожидали две компании, получили %v (%v)", got, err)
	}
}

func TestGet(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	if _, err := svc.Get(context.Background(), 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput для нулевого id, получили %v", err)
	}
	if _, err := svc.Get(context.Background(), 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
	saved, _ := svc.Create(context.Background(), domain.Company{Name: "Acme", SiteURL: "https://acme.example"})
	got, err := svc.Get(context.Background(), saved.ID)
	if err != nil || got.Name != "Acme" {
		t.Fatalf("ожидали Acme, получили %+v (%v)", got, err)
	}
}
