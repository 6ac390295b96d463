package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/internal/infrastructure/storage"
	"cinenacional-backend/internal/shared"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/crud/crudtest"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	failUp  error
}

func newMemObjects() *memObjects { return &memObjects{objects: map[string][]byte{}} }

func (m *memObjects) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUp != nil {
		return "", m.failUp
	}
	m.objects[key] = data
	return "http://cdn.test/" + key, nil
}

func (m *memObjects) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return data, nil
}

func (m *memObjects) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			delete(m.objects, k)
		}
	}
	return nil
}

func (m *memObjects) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

type recordedTask struct {
	Type    string
	Payload any
}

type memQueue struct {
	tasks []recordedTask
	err   error
}

func (q *memQueue) Enqueue(_ context.Context, taskType string, payload any) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, recordedTask{Type: taskType, Payload: payload})
	return nil
}

// asTask turns a recorded enqueue into the task the worker would receive.
func (r recordedTask) asTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := queue.NewTask(r.Type, r.Payload)
	require.NoError(t, err)
	return task
}

type fixture struct {
	router    *gin.Engine
	store     *crudtest.Store[Image]
	objects   *memObjects
	tasks     *memQueue
	processor *Processor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := crudtest.NewTaggedStore[Image]()
	objects := newMemObjects()
	tasks := &memQueue{}
	deps := crudtest.Deps(crudtest.SlugChecker{})
	images := storage.NewImageProcessor()

	res, err := Resource(store, NewUploader(store, objects, images, tasks, deps), tasks, deps)
	require.NoError(t, err)

	return &fixture{
		router:    crudtest.Router(res),
		store:     store,
		objects:   objects,
		tasks:     tasks,
		processor: NewProcessor(store, objects, images, deps),
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{G: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (f *fixture) upload(t *testing.T, file []byte, fields map[string]string, editor bool) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("file", "still.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if editor {
		req.Header.Set(crudtest.EditorHeader, "1")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestUpload_StoresOriginalAndQueuesProcessing(t *testing.T) {
	f := setup(t)

	w := f.upload(t, pngBytes(t, 800, 400), map[string]string{"movieId": "3", "caption": " Afiche "}, true)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := crudtest.Decode(t, w)
	assert.Equal(t, StatusPending, body["status"])
	assert.Equal(t, "Afiche", body["caption"])
	assert.EqualValues(t, 3, body["movieId"])
	assert.EqualValues(t, 800, body["width"])
	assert.Equal(t, "image/png", body["contentType"])

	key := body["objectKey"].(string)
	assert.Regexp(t, `^images/[0-9a-f-]{36}/original\.png$`, key)
	assert.Equal(t, "http://cdn.test/"+key, body["url"])
	assert.Equal(t, []string{key}, f.objects.keys())

	require.Len(t, f.tasks.tasks, 1)
	assert.Equal(t, shared.TypeProcessImage, f.tasks.tasks[0].Type)
	assert.Equal(t, shared.ProcessImagePayload{ImageID: 1, ObjectKey: key}, f.tasks.tasks[0].Payload)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		file   []byte
		fields map[string]string
		editor bool
		status int
		detail string
	}{
		{"no session", nil, map[string]string{"movieId": "1"}, false, http.StatusUnauthorized, ""},
		{"no owner", []byte("x"), nil, true, http.StatusBadRequest, "movieId"},
		{"bad owner id", []byte("x"), map[string]string{"personId": "abc"}, true, http.StatusBadRequest, "personId"},
		{"no file", nil, map[string]string{"movieId": "1"}, true, http.StatusBadRequest, "file"},
		{"not an image", []byte("GIF? no"), map[string]string{"movieId": "1"}, true, http.StatusBadRequest, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			w := f.upload(t, tt.file, tt.fields, tt.editor)

			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.detail != "" {
				assert.Contains(t, crudtest.Decode(t, w)["details"], tt.detail)
			}
			assert.Empty(t, f.objects.keys())
			assert.Zero(t, f.store.Len())
			assert.Empty(t, f.tasks.tasks)
		})
	}
}

func TestUpload_QueueDownKeepsPendingRecord(t *testing.T) {
	f := setup(t)
	f.tasks.err = errors.New("redis: connection refused")

	w := f.upload(t, pngBytes(t, 10, 10), map[string]string{"personId": "9"}, true)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, f.store.Len())

	f.tasks.err = nil
	w = crudtest.Do(f.router, http.MethodPost, "/api/v1/images/1/reprocess", nil, true)
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, f.tasks.tasks, 1)

	w = crudtest.Do(f.router, http.MethodPost, "/api/v1/images/42/reprocess", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessTask_PublishesVariants(t *testing.T) {
	f := setup(t)
	w := f.upload(t, pngBytes(t, 2000, 1000), map[string]string{"movieId": "1"}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, f.processor.ProcessTask(t.Context(), f.tasks.tasks[0].asTask(t)))

	img, err := f.store.FindByID(t.Context(), 1, crud.ShapeDetail)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, img.Status)
	require.Len(t, img.Variants, 3)
	assert.Equal(t, "http://cdn.test/"+VariantKey(img.ObjectKey, "thumbnail"), img.Variants["thumbnail"])
	assert.Len(t, f.objects.keys(), 4)
	assert.Equal(t, 2000, *img.Width)
}

func TestProcessTask_CorruptOriginalFails(t *testing.T) {
	f := setup(t)
	f.store.Seed(map[string]any{"object_key": "images/x/original.png", "status": StatusPending, "movie_id": int64(1)})
	_, _ = f.objects.Upload(t.Context(), "images/x/original.png", []byte("truncated"), "image/png")

	task, err := queue.NewTask(shared.TypeProcessImage, shared.ProcessImagePayload{ImageID: 1, ObjectKey: "images/x/original.png"})
	require.NoError(t, err)
	err = f.processor.ProcessTask(t.Context(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	img, _ := f.store.FindByID(t.Context(), 1, crud.ShapeDetail)
	assert.Equal(t, StatusFailed, img.Status)
}

func TestProcessTask_MissingImageIsDone(t *testing.T) {
	f := setup(t)
	task, err := queue.NewTask(shared.TypeProcessImage, shared.ProcessImagePayload{ImageID: 5})
	require.NoError(t, err)

	assert.NoError(t, f.processor.ProcessTask(t.Context(), task))
}

func TestProcessTask_StorageErrorIsRetried(t *testing.T) {
	f := setup(t)
	f.store.Seed(map[string]any{"object_key": "images/y/original.png", "status": StatusPending, "movie_id": int64(1)})
	task, err := queue.NewTask(shared.TypeProcessImage, shared.ProcessImagePayload{ImageID: 1})
	require.NoError(t, err)

	err = f.processor.ProcessTask(t.Context(), task)

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestDelete_QueuesObjectRemoval(t *testing.T) {
	f := setup(t)
	w := f.upload(t, pngBytes(t, 20, 20), map[string]string{"movieId": "1"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, f.processor.ProcessTask(t.Context(), f.tasks.tasks[0].asTask(t)))
	require.Len(t, f.objects.keys(), 4)

	w = crudtest.Do(f.router, http.MethodDelete, "/api/v1/images/1", nil, true)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, f.tasks.tasks, 2)
	removal := f.tasks.tasks[1]
	assert.Equal(t, shared.TypeDeleteImages, removal.Type)

	require.NoError(t, f.processor.DeleteTask(t.Context(), removal.asTask(t)))
	assert.Empty(t, f.objects.keys())
}

func TestDeleteTask_RefusesRootPrefix(t *testing.T) {
	f := setup(t)
	task, err := queue.NewTask(shared.TypeDeleteImages, shared.DeleteImagesPayload{Prefix: "./"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.processor.DeleteTask(t.Context(), task), asynq.SkipRetry)
}

func TestListImages_Filters(t *testing.T) {
	f := setup(t)
	f.store.Seed(map[string]any{"object_key": "a", "status": StatusReady, "movie_id": int64(1)})
	f.store.Seed(map[string]any{"object_key": "b", "status": StatusPending, "movie_id": int64(2)})
	f.store.Seed(map[string]any{"object_key": "c", "status": StatusReady, "person_id": int64(2)})

	w := crudtest.Do(f.router, http.MethodGet, "/api/v1/images?status=ready&movieId=1", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, crudtest.Decode(t, w)["total"])

	w = crudtest.Do(f.router, http.MethodGet, "/api/v1/images?status=archived", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateImage_RequiresOwner(t *testing.T) {
	f := setup(t)
	f.store.Seed(map[string]any{"object_key": "a", "status": StatusReady, "movie_id": int64(1)})

	w := crudtest.Do(f.router, http.MethodPut, "/api/v1/images/1", ImageUpdate{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = crudtest.Do(f.router, http.MethodPut, "/api/v1/images/1", ImageUpdate{PersonID: ptr(int64(4))}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := crudtest.Decode(t, w)
	assert.Nil(t, body["movieId"])
	assert.EqualValues(t, 4, body["personId"])

	w = crudtest.Do(f.router, http.MethodPut, "/api/v1/images/1", ImageUpdate{MovieID: ptr(int64(0))}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "movieId inválido", crudtest.Decode(t, w)["details"].(map[string]any)["movieId"])
}

func ptr[T any](v T) *T { return &v }
