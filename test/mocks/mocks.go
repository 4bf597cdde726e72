// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/catalog_repository.go -destination=catalog_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/ledger_repository.go -destination=ledger_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/predictor_repository.go -destination=predictor_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/user_repository.go -destination=user_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/catalog_service.go -destination=catalog_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/ledger_service.go -destination=ledger_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/forecast_service.go -destination=forecast_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/auth_service.go -destination=auth_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
