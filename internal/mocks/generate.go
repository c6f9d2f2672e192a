// Package mocks provides gomock implementations of the LMS repository and auth port interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	users := mocks.NewMockUserRepository(ctrl)
//	users.EXPECT().GetByEmail(gomock.Any(), "a@b.c").Return(user, nil)
package mocks

// Repositories from internal/core.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/starter-squad/lms/internal/core UserRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=course_repository_mock.go github.com/starter-squad/lms/internal/core CourseRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=enrollment_repository_mock.go github.com/starter-squad/lms/internal/core EnrollmentRepository

// Auth ports from internal/ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/starter-squad/lms/internal/ports CredentialStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=password_hasher_mock.go github.com/starter-squad/lms/internal/ports PasswordHasher
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_issuer_mock.go github.com/starter-squad/lms/internal/ports TokenIssuer
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/starter-squad/lms/internal/ports SessionStore
