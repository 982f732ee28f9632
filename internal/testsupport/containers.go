// containers.go
//
// Foodgram, a recipe sharing service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of foodgram-project.
// foodgram-project is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodgram-project is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodgram-project.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package testsupport starts throwaway databases for tests and local
// development. Expects DB_TYPE and DB_IMAGE in the environment; the other
// DB_* variables fall back to test values.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/VtlBz/foodgram-project/internal/config"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Containers holds the running database container and a config that
// reaches it from the host.
type Containers struct {
	Network     *testcontainers.DockerNetwork
	DBContainer testcontainers.Container
	Config      *config.Config
}

// Terminate stops every started container. Safe on a partial setup.
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// StartDatabase starts the database container described by the environment.
// t may be nil when called from a standalone binary.
func StartDatabase(t *testing.T) (*Containers, error) {
	ctx := context.Background()
	tc := &Containers{}

	dbType := getEnv("DB_TYPE", "mariadb")
	dbImage := os.Getenv("DB_IMAGE")
	if dbImage == "" {
		return nil, fmt.Errorf("DB_IMAGE is required")
	}

	cfg := config.Defaults()
	cfg.DBType = dbType
	cfg.DBDatabase = getEnv("DB_DATABASE", "foodgram")
	cfg.DBUser = getEnv("DB_USER", "foodgram")
	cfg.DBPassword = getEnv("DB_PASSWORD", "foodgram")
	cfg.DBConnectionLimit = 5
	cfg.SecretKey = getEnv("SECRET_KEY", "testcontainers-secret-key")

	if exists, err := imageExists(ctx, dbImage); err != nil {
		logMessage(t, "Could not inspect local images: %v", err)
	} else if !exists {
		logMessage(t, "Image %s not found locally, pulling...", dbImage)
	}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	dbPort, dataDir, env, waitFor, err := databaseSettings(dbType, cfg)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{string(dbPort)},
			Env:          env,
			WaitingFor:   waitFor,
			Networks:     []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {"db"},
			},
			HostConfigModifier: func(hostConfig *container.HostConfig) {
				// Data never outlives the container
				hostConfig.Tmpfs = map[string]string{dataDir: "rw"}
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	host, err := dbContainer.Host(ctx)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to get database host: %w", err)
	}
	mapped, err := dbContainer.MappedPort(ctx, dbPort)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to get database port: %w", err)
	}
	cfg.DBHost = host
	cfg.DBPort = mapped.Port()
	tc.Config = cfg

	if dbType == "mysql" || dbType == "mariadb" {
		if err := waitForMySQL(cfg); err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	logMessage(t, "DB_HOST=%s DB_PORT=%s", cfg.DBHost, cfg.DBPort)
	return tc, nil
}

func databaseSettings(dbType string, cfg *config.Config) (nat.Port, string, map[string]string, wait.Strategy, error) {
	switch dbType {
	case "mysql", "mariadb":
		port, err := nat.NewPort("tcp", "3306")
		if err != nil {
			return "", "", nil, nil, err
		}
		env := map[string]string{
			"MYSQL_ROOT_PASSWORD": getEnv("DB_ROOT_PASSWORD", "rootpass"),
			"MYSQL_DATABASE":      cfg.DBDatabase,
			"MYSQL_USER":          cfg.DBUser,
			"MYSQL_PASSWORD":      cfg.DBPassword,
		}
		return port, "/var/lib/mysql", env, wait.ForListeningPort(port).WithStartupTimeout(90 * time.Second), nil

	case "postgres", "postgresql":
		port, err := nat.NewPort("tcp", "5432")
		if err != nil {
			return "", "", nil, nil, err
		}
		env := map[string]string{
			"POSTGRES_DB":       cfg.DBDatabase,
			"POSTGRES_USER":     cfg.DBUser,
			"POSTGRES_PASSWORD": cfg.DBPassword,
		}
		strategy := wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second)
		return port, "/var/lib/postgresql/data", env, strategy, nil
	}
	return "", "", nil, nil, fmt.Errorf("unsupported container database type: %s", dbType)
}

// waitForMySQL pings until the server accepts the application user. The
// listening port opens before the init scripts have created it.
func waitForMySQL(cfg *config.Config) error {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("mysql not ready after 30 seconds: %w", err)
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
