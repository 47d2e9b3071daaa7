package integration

import (
	"shopsync/internal/logger"
	"shopsync/internal/tenant"
)

const (
	containerStartupTimeout = 60
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func createTestBinding(storefrontID, destinationID string) *tenant.Binding {
	return &tenant.Binding{
		StorefrontID:    storefrontID,
		CredentialToken: "secret_" + destinationID,
		DestinationID:   destinationID,
	}
}
