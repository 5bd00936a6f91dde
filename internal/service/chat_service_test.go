package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/repository/contract"
	"ai-studyroom-be/internal/repository/specification"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/topiccrypt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeChatLogRepo simulates the jsonb log with scripted append errors.
type fakeChatLogRepo struct {
	contract.ChatLogRepository

	log        *entity.ChatLog
	appendErrs []error // consumed per call; nil means success
	appends    int
	creates    int
}

func (f *fakeChatLogRepo) nextAppendErr() error {
	if len(f.appendErrs) == 0 {
		return nil
	}
	err := f.appendErrs[0]
	f.appendErrs = f.appendErrs[1:]
	return err
}

func (f *fakeChatLogRepo) AppendMessage(ctx context.Context, roomId, topicId uuid.UUID, msg entity.ChatMessage) error {
	f.appends++
	if err := f.nextAppendErr(); err != nil {
		return err
	}
	if f.log == nil {
		return gorm.ErrRecordNotFound
	}
	f.log.Messages = append(f.log.Messages, msg)
	return nil
}

func (f *fakeChatLogRepo) Create(ctx context.Context, log *entity.ChatLog) error {
	f.creates++
	f.log = log
	return nil
}

func (f *fakeChatLogRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error) {
	return f.log, nil
}

func (f *fakeChatLogRepo) Clear(ctx context.Context, roomId, topicId uuid.UUID) error {
	if f.log != nil {
		f.log.Messages = nil
	}
	return nil
}

type fakeUow struct {
	unitofwork.UnitOfWork
	chatLogs *fakeChatLogRepo
}

func (f *fakeUow) ChatLogRepository() contract.ChatLogRepository { return f.chatLogs }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fixedKeyService struct {
	key string
	err error
}

func (f *fixedKeyService) KeyMaterial(ctx context.Context, topicId uuid.UUID) (string, error) {
	return f.key, f.err
}

func (f *fixedKeyService) Invalidate(topicId uuid.UUID) {}

func newChatFixture(repo *fakeChatLogRepo, keys ITopicKeyService, gateway *topiccrypt.Gateway) IChatService {
	return NewChatService(&fakeUowFactory{uow: &fakeUow{chatLogs: repo}}, gateway, keys, nil, nil, nopLogger{})
}

func testMessage(content string) entity.ChatMessage {
	return entity.ChatMessage{
		MessageId: uuid.New(),
		SenderId:  uuid.New(),
		Content:   content,
		Type:      entity.MessageTypeText,
		Timestamp: time.Now().UTC(),
	}
}

func TestAppendLazilyCreatesTheLogRow(t *testing.T) {
	repo := &fakeChatLogRepo{}
	svc := newChatFixture(repo, &fixedKeyService{key: "k"}, topiccrypt.NewGateway("master"))

	err := svc.Append(context.Background(), uuid.New(), uuid.New(), testMessage("ct"))

	require.NoError(t, err)
	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, 2, repo.appends, "append, create, append again")
	require.NotNil(t, repo.log)
	assert.Len(t, repo.log.Messages, 1)
}

func TestAppendRetriesOnceOnTransientFailure(t *testing.T) {
	repo := &fakeChatLogRepo{
		log:        &entity.ChatLog{Id: uuid.New()},
		appendErrs: []error{errors.New("connection reset")},
	}
	svc := newChatFixture(repo, &fixedKeyService{key: "k"}, topiccrypt.NewGateway("master"))

	err := svc.Append(context.Background(), uuid.New(), uuid.New(), testMessage("ct"))

	require.NoError(t, err)
	assert.Equal(t, 2, repo.appends)
	assert.Len(t, repo.log.Messages, 1)
}

func TestAppendClassifiesDoubleFailureAsPersistenceError(t *testing.T) {
	repo := &fakeChatLogRepo{
		log:        &entity.ChatLog{Id: uuid.New()},
		appendErrs: []error{errors.New("down"), errors.New("still down")},
	}
	svc := newChatFixture(repo, &fixedKeyService{key: "k"}, topiccrypt.NewGateway("master"))

	err := svc.Append(context.Background(), uuid.New(), uuid.New(), testMessage("ct"))

	assert.ErrorIs(t, err, apperr.ErrPersistence)
}

func TestRecentReturnsEmptyForUnknownScope(t *testing.T) {
	repo := &fakeChatLogRepo{}
	svc := newChatFixture(repo, &fixedKeyService{key: "k"}, topiccrypt.NewGateway("master"))

	messages, err := svc.Recent(context.Background(), uuid.New(), uuid.New(), 50)

	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRecentDecryptedDropsUndecryptableMessages(t *testing.T) {
	gateway := topiccrypt.NewGateway("master")
	keyMaterial, err := topiccrypt.GenerateKeyMaterial()
	require.NoError(t, err)

	topicId := uuid.New()
	good, err := gateway.Encrypt(keyMaterial, topicId.String(), "readable")
	require.NoError(t, err)

	repo := &fakeChatLogRepo{
		log: &entity.ChatLog{
			Id: uuid.New(),
			Messages: []entity.ChatMessage{
				{MessageId: uuid.New(), Content: good, Type: entity.MessageTypeText, Timestamp: time.Now()},
				{MessageId: uuid.New(), Content: "not-a-ciphertext", Type: entity.MessageTypeText, Timestamp: time.Now()},
			},
		},
	}
	svc := newChatFixture(repo, &fixedKeyService{key: keyMaterial}, gateway)

	messages, err := svc.RecentDecrypted(context.Background(), uuid.New(), topicId, 50)

	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "readable", messages[0].Content)
}

func TestRecentHonorsTheLimit(t *testing.T) {
	log := &entity.ChatLog{Id: uuid.New()}
	for i := 0; i < 10; i++ {
		log.Messages = append(log.Messages, testMessage("m"))
	}
	repo := &fakeChatLogRepo{log: log}
	svc := newChatFixture(repo, &fixedKeyService{key: "k"}, topiccrypt.NewGateway("master"))

	messages, err := svc.Recent(context.Background(), uuid.New(), uuid.New(), 3)

	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestTailCacheOnlyServesRequestsItFullyCovers(t *testing.T) {
	cached := []entity.ChatMessage{testMessage("one"), testMessage("two")}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	messages, ok := tailFromCache(data, 2)
	require.True(t, ok)
	assert.Len(t, messages, 2)

	messages, ok = tailFromCache(data, 1)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, cached[1].MessageId, messages[0].MessageId)

	// A tail trimmed by a smaller earlier query cannot serve a larger one.
	_, ok = tailFromCache(data, 5)
	assert.False(t, ok)

	_, ok = tailFromCache(data, 0)
	assert.False(t, ok, "unbounded reads always go to the store")

	_, ok = tailFromCache([]byte("{garbage"), 1)
	assert.False(t, ok)
}
