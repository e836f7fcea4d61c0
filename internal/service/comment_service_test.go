package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/service"
)

type fakePostGetter struct {
	posts map[uint]*models.Post
}

func (f *fakePostGetter) GetByID(id uint) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return post, nil
}

// fakeCommentStore mirrors the repository's all-or-nothing MarkHelpful: a
// failed call leaves neither the award nor the flag behind.
type fakeCommentStore struct {
	comments  map[uint]*models.Comment
	awarded   int
	failMarks int
	nextID    uint
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[uint]*models.Comment), nextID: 1}
}

func (f *fakeCommentStore) Create(comment *models.Comment) error {
	comment.ID = f.nextID
	f.nextID++
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeCommentStore) GetByID(id uint) (*models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return comment, nil
}

func (f *fakeCommentStore) GetByPostID(postID uint, page, size int) ([]models.Comment, int64, error) {
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCommentStore) MarkHelpful(comment *models.Comment, award int) error {
	if f.failMarks > 0 {
		f.failMarks--
		return assert.AnError
	}
	f.awarded += award
	comment.Helpful = true
	return nil
}

func (f *fakeCommentStore) Delete(comment *models.Comment) error {
	delete(f.comments, comment.ID)
	return nil
}

type commentFixture struct {
	store *fakeCommentStore
	posts *fakePostGetter
	svc   *service.CommentService
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		store: newFakeCommentStore(),
		posts: &fakePostGetter{posts: map[uint]*models.Post{
			1: {ID: 1, AuthorID: 1, Title: "Verifico launch"},
		}},
	}
	f.svc = service.NewCommentService(f.store, f.posts, zap.NewNop())
	return f
}

func (f *commentFixture) seedComment(t *testing.T, authorID uint) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: 1, AuthorID: authorID, Content: "great idea"}
	require.NoError(t, f.store.Create(comment))
	return comment
}

func TestMarkHelpfulAwardsCommentAuthor(t *testing.T) {
	f := newCommentFixture()
	comment := f.seedComment(t, 2)

	marked, err := f.svc.MarkHelpful(1, comment.ID)
	require.NoError(t, err)
	assert.True(t, marked.Helpful)
	assert.Equal(t, 5, f.store.awarded)
}

func TestMarkHelpfulOnlyByPostAuthor(t *testing.T) {
	f := newCommentFixture()
	comment := f.seedComment(t, 2)

	_, err := f.svc.MarkHelpful(3, comment.ID)

	var authErr *apperrors.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, 0, f.store.awarded)
}

func TestMarkHelpfulRejectsOwnComment(t *testing.T) {
	f := newCommentFixture()
	comment := f.seedComment(t, 1)

	_, err := f.svc.MarkHelpful(1, comment.ID)

	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, f.store.awarded)
}

func TestMarkHelpfulAwardsAtMostOnce(t *testing.T) {
	f := newCommentFixture()
	comment := f.seedComment(t, 2)

	_, err := f.svc.MarkHelpful(1, comment.ID)
	require.NoError(t, err)

	_, err = f.svc.MarkHelpful(1, comment.ID)
	var conflictErr *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, 5, f.store.awarded)
}

func TestMarkHelpfulFailedWriteLeavesNoAwardBehind(t *testing.T) {
	f := newCommentFixture()
	comment := f.seedComment(t, 2)

	// The first attempt aborts. Award and flag commit together, so the
	// comment is still unmarked and nothing was credited.
	f.store.failMarks = 1
	_, err := f.svc.MarkHelpful(1, comment.ID)
	require.Error(t, err)
	assert.False(t, comment.Helpful)
	assert.Equal(t, 0, f.store.awarded)

	// The client retry awards exactly once.
	_, err = f.svc.MarkHelpful(1, comment.ID)
	require.NoError(t, err)
	assert.True(t, comment.Helpful)
	assert.Equal(t, 5, f.store.awarded)

	_, err = f.svc.MarkHelpful(1, comment.ID)
	var conflictErr *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, 5, f.store.awarded)
}

func TestMarkHelpfulUnknownComment(t *testing.T) {
	f := newCommentFixture()

	_, err := f.svc.MarkHelpful(1, 99)

	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
