package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cliniq/cliniq/internal/config"
	"github.com/cliniq/cliniq/internal/domain/care"
	"github.com/cliniq/cliniq/internal/domain/insurance"
	"github.com/cliniq/cliniq/internal/domain/patient"
	"github.com/cliniq/cliniq/internal/domain/scheduling"
	"github.com/cliniq/cliniq/internal/platform/db"
	"github.com/cliniq/cliniq/internal/platform/middleware"
	"github.com/cliniq/cliniq/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cliniq-server",
		Short: "Clinic front-office API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a starter catalog of care services and insurance plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			st := store.New()
			careSvc := care.NewService(care.NewServiceRepoPG(pool), st)
			insSvc := insurance.NewService(insurance.NewProviderRepoPG(pool), insurance.NewPolicyRepoPG(pool), st)

			services := []care.CareService{
				{Name: "Consultation générale", Category: "consultation", UnitPrice: 5000, DurationMinutes: 20, Active: true},
				{Name: "Consultation spécialisée", Category: "consultation", UnitPrice: 10000, DurationMinutes: 30, RequiresPhysician: true, Active: true},
				{Name: "Pansement simple", Category: "soins", UnitPrice: 2000, DurationMinutes: 15, Active: true},
				{Name: "Injection intramusculaire", Category: "soins", UnitPrice: 1500, DurationMinutes: 10, Active: true},
				{Name: "Bilan sanguin complet", Category: "laboratoire", UnitPrice: 15000, DurationMinutes: 15, Active: true},
			}
			for i := range services {
				if err := careSvc.CreateService(ctx, &services[i]); err != nil {
					return fmt.Errorf("seed care service %q: %w", services[i].Name, err)
				}
			}

			providers := []struct {
				provider insurance.Provider
				policies []insurance.Policy
			}{
				{
					provider: insurance.Provider{Name: "IPRES", Phone: "+221338891200", Active: true},
					policies: []insurance.Policy{
						{Name: "Standard", CoveragePct: 70, AnnualLimit: 500_000},
						{Name: "Premium", CoveragePct: 90, AnnualLimit: 2_000_000},
					},
				},
				{
					provider: insurance.Provider{Name: "Mutuelle Santé Plus", Phone: "+221338742211", Active: true},
					policies: []insurance.Policy{
						{Name: "Famille", CoveragePct: 80, AnnualLimit: 1_000_000},
					},
				},
			}
			for i := range providers {
				p := &providers[i]
				if err := insSvc.CreateProvider(ctx, &p.provider); err != nil {
					return fmt.Errorf("seed provider %q: %w", p.provider.Name, err)
				}
				for j := range p.policies {
					p.policies[j].ProviderID = p.provider.ID
					if err := insSvc.CreatePolicy(ctx, &p.policies[j]); err != nil {
						return fmt.Errorf("seed policy %q: %w", p.policies[j].Name, err)
					}
				}
			}

			fmt.Printf("Seeded %d care services and %d insurance providers.\n", len(services), len(providers))
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Repositories
	patientRepo := patient.NewRepoPG(pool)
	careRepo := care.NewServiceRepoPG(pool)
	providerRepo := insurance.NewProviderRepoPG(pool)
	policyRepo := insurance.NewPolicyRepoPG(pool)
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	consultRepo := scheduling.NewConsultationRepoPG(pool)

	// In-memory snapshot store, seeded from persistence so derived views and
	// the pricing/matching catalogs are warm before the first request.
	st := store.New()
	seed, err := loadSeed(ctx, patientRepo, careRepo, providerRepo, policyRepo, apptRepo, consultRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load snapshot seed")
	}
	st.Init(seed)
	logger.Info().
		Int("patients", len(seed.Patients)).
		Int("care_services", len(seed.CareServices)).
		Int("providers", len(seed.Providers)).
		Msg("snapshot store initialized")

	// Services
	careSvc := care.NewService(careRepo, st)
	insSvc := insurance.NewService(providerRepo, policyRepo, st)
	patientSvc := patient.NewService(patientRepo, st, logger)
	schedSvc := scheduling.NewService(apptRepo, consultRepo, st)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	care.NewHandler(careSvc).RegisterRoutes(apiV1)
	insurance.NewHandler(insSvc).RegisterRoutes(apiV1)
	scheduling.NewHandler(schedSvc).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func loadSeed(
	ctx context.Context,
	patients patient.Repository,
	services care.ServiceRepository,
	providers insurance.ProviderRepository,
	policies insurance.PolicyRepository,
	appointments scheduling.AppointmentRepository,
	consultations scheduling.ConsultationRepository,
) (store.Seed, error) {
	var seed store.Seed

	ps, err := patients.ListAll(ctx)
	if err != nil {
		return seed, fmt.Errorf("load patients: %w", err)
	}
	for _, p := range ps {
		seed.Patients = append(seed.Patients, *p)
	}

	svcs, err := services.ListAll(ctx)
	if err != nil {
		return seed, fmt.Errorf("load care services: %w", err)
	}
	for _, s := range svcs {
		seed.CareServices = append(seed.CareServices, *s)
	}

	provs, err := providers.ListAll(ctx)
	if err != nil {
		return seed, fmt.Errorf("load providers: %w", err)
	}
	for _, p := range provs {
		seed.Providers = append(seed.Providers, *p)
	}

	pols, err := policies.ListAll(ctx)
	if err != nil {
		return seed, fmt.Errorf("load policies: %w", err)
	}
	for _, p := range pols {
		seed.Policies = append(seed.Policies, *p)
	}

	appts, err := appointments.ListAll(ctx)
	if err != nil {
		return seed, fmt.Errorf("load appointments: %w", err)
	}
	for _, a := range appts {
		seed.Appointments = append(seed.Appointments, *a)
	}

	cons, err := consultations.ListAll(ctx)
	if err != nil {
		return seed, fmt.Errorf("load consultations: %w", err)
	}
	for _, c := range cons {
		seed.Consultations = append(seed.Consultations, *c)
	}

	return seed, nil
}
