package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"examvault-membership/internal/config"
	"examvault-membership/internal/domain/model"
	pg "examvault-membership/internal/infra/db/postgres"
	"examvault-membership/internal/infra/logging"
	"examvault-membership/internal/infra/metrics"
	"examvault-membership/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)
	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	codeRepo := pg.NewInvitationCodeRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	codeUC := usecase.NewCodeAdminUseCase(codeRepo, cfg.Codes.Length, logger)

	// Demo profile for poking at the member API by hand
	demo, err := model.NewUserProfile("demo-user")
	if err != nil {
		log.Fatalf("demo profile: %v", err)
	}
	if err := profileRepo.Save(ctx, nil, demo); err != nil {
		log.Fatalf("save demo profile: %v", err)
	}
	fmt.Println("seeded profile: demo-user")

	// If codes already exist, do nothing
	codes, err := codeUC.List(ctx)
	if err != nil {
		log.Fatalf("list codes: %v", err)
	}
	if len(codes) > 0 {
		fmt.Printf("%d invitation codes already present. No changes.\n", len(codes))
		for _, c := range codes {
			fmt.Printf("  - %s (plan=%s, used=%d/%d, active=%v)\n", c.Code, c.PlanType, c.UsedCount, c.MaxUses, c.IsActive)
		}
		return
	}

	// Seed a few sample codes for manual testing
	seed := []struct {
		Plan    string
		MaxUses int
	}{
		{"monthly", 10},
		{"yearly", 3},
	}

	for _, s := range seed {
		plan, err := model.ParsePlanType(s.Plan)
		if err != nil {
			log.Fatalf("plan %q: %v", s.Plan, err)
		}
		c, err := codeUC.Create(ctx, plan, s.MaxUses, nil, "")
		if err != nil {
			log.Fatalf("create %s code: %v", s.Plan, err)
		}
		fmt.Printf("seeded: %s (plan=%s, max_uses=%d)\n", c.Code, c.PlanType, c.MaxUses)
	}

	fmt.Println("Seeding complete.")
}
