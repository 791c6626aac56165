// Command sitectl runs one-off maintenance tasks against the site database.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/app/bootstrap"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var Version = "dev"

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sitectl",
		Short:         "Maintenance commands for the site backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("mongo-uri", "", "MongoDB connection URI (overrides STRATASITE_MONGO_URI)")
	rootCmd.PersistentFlags().String("mongo-database", "", "MongoDB database name (overrides STRATASITE_MONGO_DATABASE)")

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(syncContactCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(listAdminsCmd())
	rootCmd.AddCommand(setAdminStatusCmd())
	rootCmd.AddCommand(maintenanceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is the state shared by every command once connected.
type env struct {
	v      *viper.Viper
	db     *mongo.Database
	logger *zap.Logger
	close  func()
}

// loadViper reads STRATASITE_* variables, an optional config file and the
// persistent flags, with the same defaults as the server.
func loadViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	for _, k := range bootstrap.ConfigKeys() {
		v.SetDefault(k.Name, k.Default)
	}
	v.SetEnvPrefix(bootstrap.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	flags := cmd.Flags()
	if err := v.BindPFlag("mongo_uri", flags.Lookup("mongo-uri")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("mongo_database", flags.Lookup("mongo-database")); err != nil {
		return nil, err
	}
	return v, nil
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// connect loads configuration and opens the database.
func connect(ctx context.Context, cmd *cobra.Command) (*env, error) {
	v, err := loadViper(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	uri := v.GetString("mongo_uri")
	dbName := v.GetString("mongo_database")
	if err := wafflemongo.ValidateURI(uri); err != nil {
		return nil, fmt.Errorf("invalid mongo_uri: %w", err)
	}

	poolCfg := wafflemongo.DefaultPoolConfig()
	poolCfg.MaxPoolSize = 4
	poolCfg.MinPoolSize = 0

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	client, err := wafflemongo.ConnectWithPool(connectCtx, uri, dbName, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	logger.Debug("connected to MongoDB", zap.String("database", dbName))

	return &env{
		v:      v,
		db:     client.Database(dbName),
		logger: logger,
		close: func() {
			dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer dcancel()
			_ = client.Disconnect(dctx)
			_ = logger.Sync()
		},
	}, nil
}

// withEnv runs fn with a connected env and always releases it.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(ctx, e)
}
