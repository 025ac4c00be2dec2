package main

import (
	"context"
	"flag"
	"log"
	"time"

	"examvault-membership/internal/config"
	pg "examvault-membership/internal/infra/db/postgres"
)

// Idempotent schema bootstrap. Every statement is IF NOT EXISTS so the tool
// can run on every deploy.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id        TEXT PRIMARY KEY,
    is_vip         BOOLEAN NOT NULL DEFAULT FALSE,
    vip_expires_at TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS invitation_codes (
    id         TEXT PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    plan_type  TEXT NOT NULL,
    max_uses   INTEGER NOT NULL,
    used_count INTEGER NOT NULL DEFAULT 0,
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    expires_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT invitation_codes_use_bound CHECK (used_count >= 0 AND used_count <= max_uses)
);

CREATE TABLE IF NOT EXISTS invitation_code_uses (
    id         TEXT PRIMARY KEY,
    code_id    TEXT NOT NULL REFERENCES invitation_codes(id) ON DELETE CASCADE,
    user_id    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT invitation_code_uses_once UNIQUE (code_id, user_id)
);

CREATE TABLE IF NOT EXISTS vip_orders (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL,
    plan_type         TEXT NOT NULL,
    amount_cents      BIGINT NOT NULL,
    status            TEXT NOT NULL,
    payment_method    TEXT NOT NULL DEFAULT '',
    payment_reference TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    paid_at           TIMESTAMPTZ,
    expires_at        TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_vip_orders_user_id ON vip_orders (user_id);
CREATE INDEX IF NOT EXISTS idx_vip_orders_status_created ON vip_orders (status, created_at);
CREATE INDEX IF NOT EXISTS idx_code_uses_user_id ON invitation_code_uses (user_id);
`

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema up to date")
}
