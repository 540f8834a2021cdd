// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/sheets-ingress/pkg/config"
)

// ConnectorFactory creates the external service connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePostgresConnector creates a new PostgreSQL connector
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	f.logger.Info("Creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}

	return connector, nil
}

// CreateSheetsConnector creates a new Google Sheets connector
func (f *ConnectorFactory) CreateSheetsConnector(ctx context.Context) (*SheetsConnector, error) {
	f.logger.Info("Creating Google Sheets connector")

	connector, err := NewSheetsConnector(ctx, f.cfg.Google)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Sheets connector: %w", err)
	}

	return connector, nil
}

// CreateAllConnectors creates both the PostgreSQL and Google Sheets connectors
func (f *ConnectorFactory) CreateAllConnectors(ctx context.Context) (*PostgresConnector, *SheetsConnector, error) {
	pgConn, err := f.CreatePostgresConnector(ctx)
	if err != nil {
		return nil, nil, err
	}

	sheetsConn, err := f.CreateSheetsConnector(ctx)
	if err != nil {
		pgConn.Close() // Clean up the PostgreSQL connection if Sheets fails
		return nil, nil, err
	}

	return pgConn, sheetsConn, nil
}
