package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-portal/internal/booking"
	"github.com/hackgods/clinic-portal/internal/db"
	"github.com/hackgods/clinic-portal/internal/directory"
	"github.com/hackgods/clinic-portal/internal/identity"
)

const seedPassword = "changeme123"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	admin, err := seedAdmin(context.Background(), pool)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	dirSvc := directory.NewService(directory.NewPgRepository(pool), bcrypt.MinCost, zerolog.Nop())

	clinics, err := seedClinics(context.Background(), dirSvc, admin)
	if err != nil {
		log.Fatalf("seed clinics: %v", err)
	}
	providers, err := seedProviders(context.Background(), dirSvc, admin, clinics, 25)
	if err != nil {
		log.Fatalf("seed providers: %v", err)
	}
	if err := seedPatients(context.Background(), dirSvc, admin, clinics, 200); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedSlots(context.Background(), pool, providers, 8); err != nil {
		log.Fatalf("seed slots: %v", err)
	}

	log.Println("seed complete")
}

// seedAdmin inserts the portal administrator directly; there is no
// self-service registration path for the admin tier.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool) (identity.Actor, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return identity.Actor{}, err
	}

	const email = "admin@clinic-portal.local"
	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO accounts (email, credential_hash, given_name, surname, tier_id)
		VALUES ($1, $2, 'Portal', 'Admin',
			(SELECT tier_id FROM access_levels WHERE tier_name = 'admin'))
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`, email, string(hash)).Scan(&id)
	if err != nil {
		return identity.Actor{}, err
	}

	log.Printf("admin ready: %s", email)
	return identity.Actor{AccountID: id, Email: email, Role: identity.RoleAdmin}, nil
}

func seedClinics(ctx context.Context, svc *directory.Service, admin identity.Actor) ([]directory.Clinic, error) {
	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"Ear Nose Throat",
	}

	log.Printf("seeding %d clinics", len(specialties))

	clinics := make([]directory.Clinic, 0, len(specialties))
	for _, title := range specialties {
		c, err := svc.CreateClinic(ctx, admin, title, gofakeit.Sentence(8))
		if err != nil {
			return nil, fmt.Errorf("clinic %q: %w", title, err)
		}
		clinics = append(clinics, *c)
	}

	log.Println("clinics seeded")
	return clinics, nil
}

func seedProviders(ctx context.Context, svc *directory.Service, admin identity.Actor, clinics []directory.Clinic, count int) ([]directory.Provider, error) {
	log.Printf("seeding %d providers", count)

	providers := make([]directory.Provider, 0, count)
	for i := 0; i < count; i++ {
		clinic := clinics[gofakeit.Number(0, len(clinics)-1)]
		p, err := svc.CreateProvider(ctx, admin, directory.ProviderRegistration{
			Email:     gofakeit.Email(),
			Password:  seedPassword,
			GivenName: gofakeit.FirstName(),
			Surname:   gofakeit.LastName(),
			ClinicID:  &clinic.ID,
			Expertise: clinic.Title,
			Biography: gofakeit.Sentence(12),
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, *p)
	}

	log.Println("providers seeded")
	return providers, nil
}

func seedPatients(ctx context.Context, svc *directory.Service, admin identity.Actor, clinics []directory.Clinic, count int) error {
	log.Printf("seeding %d patients", count)

	for i := 0; i < count; i++ {
		reg := directory.PatientRegistration{
			Email:           gofakeit.Email(),
			Password:        seedPassword,
			PasswordConfirm: seedPassword,
			GivenName:       gofakeit.FirstName(),
			Surname:         gofakeit.LastName(),
		}
		// Roughly a third of patients arrive without a clinic preference.
		if gofakeit.Number(0, 2) > 0 {
			clinic := clinics[gofakeit.Number(0, len(clinics)-1)]
			reg.ClinicID = &clinic.ID
		}
		if _, err := svc.CreatePatient(ctx, admin, reg); err != nil {
			return err
		}
	}

	log.Println("patients seeded")
	return nil
}

func seedSlots(ctx context.Context, pool *pgxpool.Pool, providers []directory.Provider, perProvider int) error {
	log.Printf("seeding %d slots per provider", perProvider)

	svc := booking.NewService(booking.NewPgRepository(pool), nil, zerolog.Nop())

	dayStart := time.Now().Truncate(time.Hour).Add(24 * time.Hour)
	for _, p := range providers {
		actor := identity.Actor{AccountID: p.AccountID, Email: p.Email, Role: identity.RoleProvider}
		for i := 0; i < perProvider; i++ {
			startsAt := dayStart.Add(time.Duration(i) * time.Hour)
			if _, err := svc.CreateSlot(ctx, actor, startsAt, 30); err != nil {
				return err
			}
		}
	}

	log.Println("slots seeded")
	return nil
}
