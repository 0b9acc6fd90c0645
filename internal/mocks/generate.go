// Package mocks provides gomock-generated mocks for the core ports.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/slushhq/agent-ops/internal/core JobRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=output_repository_mock.go github.com/slushhq/agent-ops/internal/core OutputRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=output_cache_mock.go github.com/slushhq/agent-ops/internal/core OutputCache
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=text_generator_mock.go github.com/slushhq/agent-ops/internal/core TextGenerator
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=snapshot_fetcher_mock.go github.com/slushhq/agent-ops/internal/core SnapshotFetcher
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=file_loader_mock.go github.com/slushhq/agent-ops/internal/core FileLoader
