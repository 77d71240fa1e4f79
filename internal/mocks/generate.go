// Package mocks provides mock implementations for testing the dealerdesk auth system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockStore := mocks.NewMockCredentialStore(ctrl)
//	mockStore.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(cred, nil)
package mocks

// Generate mock for CredentialStore interface from internal/ports package.
// This creates MockCredentialStore with methods for all CredentialStore interface methods:
// Create, GetByEmail, GetByUsername, GetByID, ListByDealerAndRole, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/dealerdesk/dealerdesk/internal/ports CredentialStore
