package mocks

import (
	"context"
	"io"

	"daoapi/internal/model"
	"daoapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDossierService struct {
	mock.Mock
}

func (m *MockDossierService) Create(ctx context.Context, viewer model.Viewer, in service.CreateDossierInput) (*service.DossierView, error) {
	args := m.Called(ctx, viewer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DossierView), args.Error(1)
}

func (m *MockDossierService) Get(ctx context.Context, viewer model.Viewer, id int64) (*service.DossierDetail, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DossierDetail), args.Error(1)
}

func (m *MockDossierService) List(ctx context.Context, viewer model.Viewer, limit, offset int) (*service.DossierListResult, error) {
	args := m.Called(ctx, viewer, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DossierListResult), args.Error(1)
}

func (m *MockDossierService) SetCompleted(ctx context.Context, viewer model.Viewer, id int64, completed bool) (*service.DossierView, error) {
	args := m.Called(ctx, viewer, id, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DossierView), args.Error(1)
}

func (m *MockDossierService) Dashboard(ctx context.Context, viewer model.Viewer) (*service.Dashboard, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, viewer model.Viewer, dossierID int64, name string) (*model.Task, error) {
	args := m.Called(ctx, viewer, dossierID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, viewer model.Viewer, dossierID int64) ([]model.Task, error) {
	args := m.Called(ctx, viewer, dossierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskService) UpdateProgress(ctx context.Context, viewer model.Viewer, taskID int64, progress int) (*model.Task, error) {
	args := m.Called(ctx, viewer, taskID, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Assign(ctx context.Context, viewer model.Viewer, taskID int64, userID *int64) (*model.Task, error) {
	args := m.Called(ctx, viewer, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Add(ctx context.Context, viewer model.Viewer, taskID int64, in service.CommentInput) (*model.Comment, error) {
	args := m.Called(ctx, viewer, taskID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, viewer model.Viewer, taskID int64) ([]model.Comment, error) {
	args := m.Called(ctx, viewer, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, viewer model.Viewer, in service.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, viewer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, capability model.Capability) ([]model.User, error) {
	args := m.Called(ctx, capability)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Upload(ctx context.Context, viewer model.Viewer, dossierID int64, r io.Reader, originalFilename, contentType string, size int64) (*model.Attachment, error) {
	args := m.Called(ctx, viewer, dossierID, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) List(ctx context.Context, viewer model.Viewer, dossierID int64, limit, offset int) (*service.AttachmentListResult, error) {
	args := m.Called(ctx, viewer, dossierID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttachmentListResult), args.Error(1)
}

func (m *MockAttachmentService) Get(ctx context.Context, viewer model.Viewer, id string) (*model.Attachment, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Delete(ctx context.Context, viewer model.Viewer, id string) error {
	args := m.Called(ctx, viewer, id)
	return args.Error(0)
}

func (m *MockAttachmentService) DownloadURL(ctx context.Context, viewer model.Viewer, id string) (string, error) {
	args := m.Called(ctx, viewer, id)
	return args.String(0), args.Error(1)
}
