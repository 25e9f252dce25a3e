package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"planportal/internal/model"
	repoMocks "planportal/internal/repository/mocks"
	"planportal/internal/storage"
	storeMocks "planportal/internal/storage/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newTestUpload() (*uploadService, *storeMocks.MockStorage, *repoMocks.MockFileRepository) {
	st := new(storeMocks.MockStorage)
	files := new(repoMocks.MockFileRepository)
	st.On("PublicURL", mock.Anything).Return("https://cdn.example.in/portal/x").Maybe()
	svc := NewUploadService(st, files, nil, nil, discardLogger()).(*uploadService)
	return svc, st, files
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "users/u1/photo/abc.jpg", ObjectKey("u1", model.DocPhoto, "abc", ".jpg"))
	assert.Equal(t, ".pdf", cleanExt("Deed.PDF"))
	assert.Equal(t, "", cleanExt("noext"))
}

func TestUploadService_Upload(t *testing.T) {
	ctx := context.Background()
	content := "signed deed"
	key := ObjectKey("u1", model.DocLLPAgreement, sha(content), ".pdf")

	tests := []struct {
		name        string
		reader      io.Reader
		purpose     model.DocumentPurpose
		setupMocks  func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository)
		wantCreated bool
		wantErr     error
		wantErrMsg  string
	}{
		{
			name:    "new content is written",
			reader:  strings.NewReader(content),
			purpose: model.DocLLPAgreement,
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {
				st.On("Stat", ctx, key).Return(storage.ObjectInfo{}, storage.ErrNotFound)
				st.On("Put", ctx, key, mock.Anything, storage.PutObjectOptions{
					Size:        int64(len(content)),
					ContentType: "application/pdf",
					Metadata:    map[string]string{"original-filename": "deed.pdf"},
				}).Return(storage.ObjectInfo{Key: key}, nil)
				files.On("Create", ctx, "u1", mock.MatchedBy(func(f model.StoredFile) bool {
					return f.Path == key && f.Created
				})).Return(nil)
			},
			wantCreated: true,
		},
		{
			name:    "existing content is not written again",
			reader:  strings.NewReader(content),
			purpose: model.DocLLPAgreement,
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {
				st.On("Stat", ctx, key).Return(storage.ObjectInfo{Key: key}, nil)
				files.On("Create", ctx, "u1", mock.Anything).Return(nil)
			},
		},
		{
			name:       "unknown purpose",
			reader:     strings.NewReader(content),
			purpose:    "selfie",
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {},
			wantErr:    ErrInvalidPurpose,
		},
		{
			name:       "nil reader",
			purpose:    model.DocPhoto,
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {},
			wantErr:    ErrReaderNil,
		},
		{
			name:       "too large",
			reader:     bytes.NewReader(make([]byte, MaxUploadSize+1)),
			purpose:    model.DocPhoto,
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {},
			wantErr:    ErrFileTooLarge,
		},
		{
			name:    "index failure removes the new object",
			reader:  strings.NewReader(content),
			purpose: model.DocLLPAgreement,
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {
				st.On("Stat", ctx, key).Return(storage.ObjectInfo{}, storage.ErrNotFound)
				st.On("Put", ctx, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
				files.On("Create", ctx, "u1", mock.Anything).Return(errors.New("db down"))
				st.On("Delete", ctx, key).Return(nil)
			},
			wantErrMsg: "db save failed: db down",
		},
		{
			name:    "storage error",
			reader:  strings.NewReader(content),
			purpose: model.DocLLPAgreement,
			setupMocks: func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {
				st.On("Stat", ctx, key).Return(storage.ObjectInfo{}, storage.ErrNotFound)
				st.On("Put", ctx, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, files := newTestUpload()
			tt.setupMocks(st, files)

			f, err := svc.Upload(ctx, "u1", tt.purpose, "deed.pdf", "application/pdf", tt.reader)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, key, f.Path)
				assert.Equal(t, sha(content), f.Hash)
				assert.Equal(t, tt.wantCreated, f.Created)
				if !tt.wantCreated {
					st.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				}
			}
			st.AssertExpectations(t)
			files.AssertExpectations(t)
		})
	}
}

func TestUploadService_UploadTwiceSamePath(t *testing.T) {
	ctx := context.Background()
	svc, st, files := newTestUpload()
	key := ObjectKey("u1", model.DocPhoto, sha("face"), ".jpg")

	st.On("Stat", ctx, key).Return(storage.ObjectInfo{}, storage.ErrNotFound).Once()
	st.On("Put", ctx, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil).Once()
	st.On("Stat", ctx, key).Return(storage.ObjectInfo{Key: key}, nil).Once()
	files.On("Create", ctx, "u1", mock.Anything).Return(nil).Twice()

	first, err := svc.Upload(ctx, "u1", model.DocPhoto, "a.jpg", "image/jpeg", strings.NewReader("face"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "u1", model.DocPhoto, "b.JPG", "image/jpeg", strings.NewReader("face"))
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
	assert.True(t, first.Created)
	assert.False(t, second.Created)
	st.AssertNumberOfCalls(t, "Put", 1)
}

func TestUploadService_Replace(t *testing.T) {
	ctx := context.Background()
	key := ObjectKey("u1", model.DocSignature, sha("new"), ".png")
	previous := "users/u1/signature/old.png"

	expectUpload := func(st *storeMocks.MockStorage, files *repoMocks.MockFileRepository) {
		st.On("Stat", ctx, key).Return(storage.ObjectInfo{}, storage.ErrNotFound)
		st.On("Put", ctx, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
		files.On("Create", ctx, "u1", mock.Anything).Return(nil)
	}

	t.Run("previous deleted after commit", func(t *testing.T) {
		svc, st, files := newTestUpload()
		expectUpload(st, files)
		committed := false
		st.On("Delete", ctx, previous).Run(func(mock.Arguments) {
			assert.True(t, committed, "previous object deleted before commit")
		}).Return(nil)
		files.On("DeleteByPath", ctx, previous).Return(nil)

		f, err := svc.Replace(ctx, "u1", model.DocSignature, "sig.png", "image/png", strings.NewReader("new"), previous,
			func(context.Context, *model.StoredFile) error {
				committed = true
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, key, f.Path)
		st.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("failed commit keeps previous", func(t *testing.T) {
		svc, st, files := newTestUpload()
		expectUpload(st, files)
		st.On("DeleteMany", ctx, []string{key}).Return(nil)
		files.On("DeleteByPath", ctx, key).Return(nil)

		_, err := svc.Replace(ctx, "u1", model.DocSignature, "sig.png", "image/png", strings.NewReader("new"), previous,
			func(context.Context, *model.StoredFile) error { return errors.New("db down") })
		assert.ErrorContains(t, err, "commit replacement: db down")
		st.AssertNotCalled(t, "Delete", ctx, previous)
		st.AssertExpectations(t)
	})

	t.Run("same content keeps the object", func(t *testing.T) {
		svc, st, files := newTestUpload()
		st.On("Stat", ctx, key).Return(storage.ObjectInfo{Key: key}, nil)
		files.On("Create", ctx, "u1", mock.Anything).Return(nil)

		_, err := svc.Replace(ctx, "u1", model.DocSignature, "sig.png", "image/png", strings.NewReader("new"), key, nil)
		require.NoError(t, err)
		st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("foreign previous path is left alone", func(t *testing.T) {
		svc, st, files := newTestUpload()
		expectUpload(st, files)

		_, err := svc.Replace(ctx, "u1", model.DocSignature, "sig.png", "image/png", strings.NewReader("new"), "users/u2/signature/x.png", nil)
		require.NoError(t, err)
		st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUploadService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign path", func(t *testing.T) {
		svc, _, _ := newTestUpload()
		assert.ErrorIs(t, svc.Delete(ctx, "u1", "users/u2/photo/a.jpg"), ErrForbidden)
	})

	t.Run("missing object", func(t *testing.T) {
		svc, st, _ := newTestUpload()
		st.On("Stat", ctx, "users/u1/photo/a.jpg").Return(storage.ObjectInfo{}, storage.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, "u1", "users/u1/photo/a.jpg"), ErrFileNotFound)
	})

	t.Run("success", func(t *testing.T) {
		svc, st, files := newTestUpload()
		st.On("Stat", ctx, "users/u1/photo/a.jpg").Return(storage.ObjectInfo{}, nil)
		st.On("Delete", ctx, "users/u1/photo/a.jpg").Return(nil)
		files.On("DeleteByPath", ctx, "users/u1/photo/a.jpg").Return(nil)
		require.NoError(t, svc.Delete(ctx, "u1", "users/u1/photo/a.jpg"))
		files.AssertExpectations(t)
	})
}

type fakeResolver map[string]bool

func (f fakeResolver) Resolves(_ context.Context, url string) (bool, error) {
	return f[url], nil
}

func TestUploadService_Verify(t *testing.T) {
	svc := NewUploadService(nil, nil, fakeResolver{"https://cdn/a": true}, nil, discardLogger())

	ok, err := svc.Verify(context.Background(), "https://cdn/a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
