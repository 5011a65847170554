package server

import (
	"context"
	"strings"
	"time"

	"menu-app/cache"
	"menu-app/config"
	"menu-app/controllers"
	"menu-app/controllers/idgen"
	"menu-app/database"
	"menu-app/migration"
	"menu-app/repositories"
	"menu-app/routes"
	"menu-app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

const driverMemory = "memory"

// Server holds the wired HTTP app and the resources it owns.
type Server struct {
	App   *fiber.App
	Menus *services.MenuService
	Items *services.MenuItemService

	cfg     *config.Config
	log     *logrus.Logger
	closers []func() error
}

// New opens the store and the optional redis cache, then wires services,
// controllers and routes.
func New(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	if err := idgen.Init(cfg.SnowflakeNode); err != nil {
		return nil, errors.Wrap(err, "init id generator")
	}

	s := &Server{cfg: cfg, log: log}
	repo, err := s.openRepository()
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	var hierarchyCache services.HierarchyCache
	var cachePinger controllers.Pinger
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisHierarchyCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.closers = append(s.closers, rc.Close)
		hierarchyCache, cachePinger = rc, rc
		log.WithField("ttl", cfg.CacheTTL.String()).Info("hierarchy cache enabled")
	}

	s.Menus = services.NewMenuService(repo, hierarchyCache, log)
	s.Items = services.NewMenuItemService(repo, hierarchyCache, log)
	s.App = routes.NewApp(cfg, log, routes.Handlers{
		Menus:  controllers.NewMenuController(s.Menus),
		Items:  controllers.NewMenuItemController(s.Items),
		Health: controllers.NewHealthController(s.Menus, cachePinger),
	})
	return s, nil
}

func (s *Server) openRepository() (services.Repository, error) {
	if strings.EqualFold(s.cfg.DB.Driver, driverMemory) {
		s.log.Warn("using in-memory store, data is lost on exit")
		return repositories.NewMemoryRepository(), nil
	}

	db, err := OpenDatabase(s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	s.closers = append(s.closers, sqlDB.Close)

	if err := migration.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "auto migrate")
	}
	return repositories.NewMenuRepository(db), nil
}

// OpenDatabase creates the database when DB_ENSURE is set and connects to it.
func OpenDatabase(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	if strings.EqualFold(cfg.DB.Driver, driverMemory) {
		return nil, errors.New("DB_DRIVER=memory has no database to open")
	}
	if cfg.DB.Ensure {
		if err := database.EnsureDatabaseExists(cfg.DB, log); err != nil {
			return nil, err
		}
	}
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	return db, nil
}

// Seed creates the default menu when SEED_DEFAULT_MENU is set and the store
// is empty.
func (s *Server) Seed(ctx context.Context) error {
	if !s.cfg.SeedDefault {
		return nil
	}
	return database.SeedDefaultMenu(ctx, s.Menus, s.Items, s.log)
}

// Listen serves until ctx is done, then shuts the app down.
func (s *Server) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.App.Listen(":" + s.cfg.AppPort)
	}()
	s.log.WithFields(logrus.Fields{"port": s.cfg.AppPort, "routes": s.cfg.MainRoutes}).Info("server started")

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	if err := s.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// Close releases the database pool and the cache client.
func (s *Server) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
