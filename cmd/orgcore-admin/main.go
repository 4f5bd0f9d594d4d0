// Command orgcore-admin runs operator tasks against the orgcore database
//
// Every task acts through a real membership: the --org and --user flags are
// resolved by the identity builder and the resulting context carries audit source cli
package main

import (
	"context"
	"fmt"
	"os"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/version"
	"orgcore/internal/modkit"
	"orgcore/internal/modkit/repokit"
	"orgcore/internal/platform/config"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/api"
	iddomain "orgcore/internal/services/identity/domain"

	"github.com/spf13/cobra"
)

const service = "orgcore-admin"

type actor struct {
	org  string
	user string
}

func (a *actor) flags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.org, "org", "", "organization id to act in")
	cmd.Flags().StringVar(&a.user, "user", "", "member user id to act as")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("user")
}

// env is what a task runs against; modules are composed by tasks that need them
type env struct {
	deps modkit.Deps
	mods api.Modules
	st   *store.Store
}

func (e *env) compose() { e.mods = api.Compose(e.deps) }

func (e *env) close() {
	if err := e.st.Close(context.Background()); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}

// open connects postgres and, when enabled, redis, then composes the modules
func open(ctx context.Context) (*env, error) {
	config.LoadDotenv()
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	redisCfg := root.Prefix("SERVICE_REDIS_")
	l := logger.Get()

	st, err := store.Open(ctx, store.Config{
		AppName: service,
		PG: store.PGConfig{
			Enabled:        true,
			URL:            pgCfg.MustString("DBURL"),
			MaxConns:       2,
			SlowQueryMs:    pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:         pgCfg.MayBool("LOG_SQL", false),
			ConnectRetries: 3,
		},
		Redis: store.RedisConfig{
			Enabled:  redisCfg.MayBool("ENABLED", false),
			Addr:     redisCfg.MayString("ADDR", "localhost:6379"),
			Password: redisCfg.MayString("PASSWORD", ""),
			DB:       redisCfg.MayInt("DB", 0),
		},
	}, store.WithLogger(*l))
	if err != nil {
		return nil, err
	}
	if p, ok := st.PG.(store.Pinger); ok {
		repokit.MustPing(ctx, "postgres", p)
	}
	deps := api.NewDeps(root, st, l, nil)
	return &env{deps: deps, st: st}, nil
}

// context builds the authorization context for the acting member
func (e *env) context(ctx context.Context, a actor) (context.Context, *authz.Context, error) {
	if e.mods.Identity == nil {
		e.compose()
	}
	b := e.mods.Identity.Builder()
	ac, err := b.Build(ctx, iddomain.Identity{
		UserID:        a.user,
		OrgID:         a.org,
		CorrelationID: fmt.Sprintf("%s-%d", service, e.deps.Now().Now().UnixNano()),
		AuditSource:   authz.SourceCLI,
	})
	if err != nil {
		return ctx, nil, err
	}
	ctx = logger.WithActor(ctx, ac.OrgID(), ac.UserID())
	ctx, err = authz.Attach(ctx, ac)
	return ctx, ac, err
}

var rootCmd = &cobra.Command{
	Use:           service,
	Short:         "Operator tasks for orgcore",
	Version:       version.Info(service).Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd(), sweepAuditCmd(), resolvePlanCmd(), issueTokenCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Get().Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
