package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mek0124/TrackMasterPro/internal/models"
)

var (
	ErrForbidden            = errors.New("forbidden")
	ErrTaskNotFound         = errors.New("task not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrUserInactive         = errors.New("user is inactive")
)

type TaskService interface {
	// ListTasks returns every task owned by ownerID, newest first.
	//
	// It returns ErrForbidden if the requester is not the owner.
	ListTasks(ctx context.Context, requesterID, ownerID int64) ([]*models.Task, error)

	// CreateTask persists a new task for the owner declared in params.
	//
	// The declared owner must be the requester; anything else
	// returns ErrForbidden. Priority defaults to medium.
	CreateTask(ctx context.Context, requesterID int64, params CreateTaskParams) (*models.Task, error)

	// UpdateTask applies a merge-patch to the task: only fields
	// present in the patch change, and a present owner field is
	// ignored. The updated_at stamp is refreshed even for an
	// empty patch.
	//
	// It returns ErrTaskNotFound if the task doesn't exist and
	// ErrForbidden if its stored owner is not the requester.
	UpdateTask(ctx context.Context, requesterID, taskID int64, patch TaskPatch) (*models.Task, error)

	// DeleteTask permanently removes the task, with the same
	// ErrTaskNotFound/ErrForbidden contract as UpdateTask.
	DeleteTask(ctx context.Context, requesterID, taskID int64) error
}

type AuthService interface {
	// Register hashes the password and creates the user.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login verifies the credentials and issues a signed bearer
	// token.
	//
	// It returns ErrUserNotFound, ErrUserPasswordMismatch or
	// ErrUserInactive as appropriate.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// ParseToken validates the token's signature, issuer and
	// expiry and returns its registered claims.
	ParseToken(token string) (*jwt.RegisteredClaims, error)

	// VerifyToken resolves the token to an active user.
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// TaskStore is the slice of the relational store the task service
// relies on. Implemented by storage.TaskStore.
type TaskStore interface {
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasksByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error)
	InsertTask(ctx context.Context, task *models.Task) (int64, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id int64) error
}

// UserStore is implemented by storage.UserStore.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) (int64, error)
}

// TaskListCache caches per-owner task lists. A miss is never an
// error; mutations invalidate the owner's entry.
type TaskListCache interface {
	Get(ctx context.Context, ownerID int64) ([]*models.Task, bool)
	Set(ctx context.Context, ownerID int64, tasks []*models.Task)
	Invalidate(ctx context.Context, ownerID int64)
}

type CreateTaskParams struct {
	UserID    int64
	Title     string
	Detail    string
	Date      string
	Time      string
	Priority  string
	Completed bool
}

// TaskPatch carries only the fields the caller intends to change.
// UserID is accepted for wire compatibility but never applied.
type TaskPatch struct {
	Title     *string
	Detail    *string
	Date      *string
	Time      *string
	Priority  *string
	Completed *bool
	UserID    *int64
}

type RegisterParams struct {
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	UserID               int64
	AccessToken          string
	AccessTokenExpiresAt time.Time
}
