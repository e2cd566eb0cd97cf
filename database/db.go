/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"
	_ "github.com/lib/pq"

	"github.com/smarttech/storefront/config"
	"github.com/smarttech/storefront/internal/apierror"
)

var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

// NewDataSource returns the shared Postgres datasource.
//
// Parameters:
// - configuration *config.Configuration: provides the data source DNS.
//
// Returns:
// - IDataSource: the datasource.
// - error: when the database cannot be reached.
func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection opens the pool once per process.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		// let the next caller retry
		once = sync.Once{}
		return nil, err
	}
	return instance, nil
}

// ConnectDB opens a pooled connection and verifies it.
func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Printf("database connection error ❌: %v", err)
		_ = db.Close()
		return nil, err
	}

	log.Println("database connection established ✅")
	return db, nil
}

// Ping checks that the database answers.
func (d Datasource) Ping(ctx context.Context) error {
	return d.Conn.PingContext(ctx)
}

// mapError turns driver errors into API errors. notFound is used for sql.ErrNoRows.
func mapError(err error, notFound, failure string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apierror.NewAPIError(apierror.ErrNotFound, notFound, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return apierror.NewAPIError(apierror.ErrConflict, "Record already exists", err)
		case "foreign_key_violation":
			return apierror.NewAPIError(apierror.ErrInvalidInput, "Referenced record does not exist", err)
		}
	}
	return apierror.NewAPIError(apierror.ErrInternalServer, failure, err)
}
