package database

import (
	"fmt"
	"regexp"
	"time"

	"menu-app/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var validDBName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var defaultPorts = map[string]string{
	"postgres": "5432",
	"mysql":    "3306",
	"mssql":    "1433",
}

func port(opts config.DatabaseOptions) string {
	if opts.Port != "" {
		return opts.Port
	}
	return defaultPorts[opts.Driver]
}

// getDSNAndDialector builds the connection for dbName on the configured
// server. Drivers: postgres, mysql and mssql.
func getDSNAndDialector(opts config.DatabaseOptions, dbName string) (string, gorm.Dialector, error) {
	switch opts.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			opts.Host, opts.User, opts.Password, dbName, port(opts))
		return dsn, postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			opts.User, opts.Password, opts.Host, port(opts), dbName)
		return dsn, mysql.Open(dsn), nil
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			opts.User, opts.Password, opts.Host, port(opts), dbName)
		return dsn, sqlserver.Open(dsn), nil
	default:
		return "", nil, errors.Errorf("unsupported DB_DRIVER: %q", opts.Driver)
	}
}

// maintenanceDB is the database every server of the driver has, used to
// create the application database.
func maintenanceDB(driver string) string {
	switch driver {
	case "postgres":
		return "postgres"
	case "mssql":
		return "master"
	default:
		return ""
	}
}

func gormConfig(log logrus.FieldLogger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Open connects to the application database and sizes the pool.
func Open(opts config.DatabaseOptions, log logrus.FieldLogger) (*gorm.DB, error) {
	_, dialector, err := getDSNAndDialector(opts, opts.Name)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, gormConfig(log))
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s database %s", opts.Driver, opts.Name)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.WithFields(logrus.Fields{"driver": opts.Driver, "database": opts.Name}).Info("connected to database")
	return db, nil
}

// EnsureDatabaseExists creates the application database when the server does
// not have it yet.
func EnsureDatabaseExists(opts config.DatabaseOptions, log logrus.FieldLogger) error {
	if !validDBName.MatchString(opts.Name) {
		return errors.Errorf("invalid database name %q", opts.Name)
	}

	_, dialector, err := getDSNAndDialector(opts, maintenanceDB(opts.Driver))
	if err != nil {
		return err
	}
	db, err := gorm.Open(dialector, gormConfig(log))
	if err != nil {
		return errors.Wrap(err, "connect to database server")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	exists, err := checkDatabaseExists(db, opts.Driver, opts.Name)
	if err != nil {
		return errors.Wrap(err, "check database existence")
	}
	if exists {
		return nil
	}

	if err := db.Exec(createDatabaseStatement(opts.Driver, opts.Name)).Error; err != nil {
		return errors.Wrapf(err, "create database %s", opts.Name)
	}
	log.WithField("database", opts.Name).Info("database created")
	return nil
}

func checkDatabaseExists(db *gorm.DB, driver, dbName string) (bool, error) {
	var count int64
	switch driver {
	case "postgres":
		err := db.Raw("SELECT COUNT(*) FROM pg_database WHERE datname = ?", dbName).Scan(&count).Error
		return count > 0, err
	case "mysql":
		err := db.Raw("SELECT COUNT(*) FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?", dbName).Scan(&count).Error
		return count > 0, err
	case "mssql":
		err := db.Raw("SELECT COUNT(*) FROM master.sys.databases WHERE name = ?", dbName).Scan(&count).Error
		return count > 0, err
	default:
		return false, errors.Errorf("unsupported DB driver %q", driver)
	}
}

func createDatabaseStatement(driver, dbName string) string {
	switch driver {
	case "mysql":
		return "CREATE DATABASE IF NOT EXISTS " + dbName
	case "mssql":
		return "IF DB_ID('" + dbName + "') IS NULL CREATE DATABASE " + dbName
	default:
		return "CREATE DATABASE " + dbName
	}
}
