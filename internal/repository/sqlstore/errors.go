package sqlstore

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrForeignKey = errors.New("referenced record does not exist")
	ErrPolicy     = errors.New("rejected by store policy")
	ErrNotOwner   = errors.New("record belongs to another user")
)

// RateLimitError 由限流触发器产生，Message 为触发器中的提示文案
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string { return e.Message }

func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// classify 按驱动的结构化错误码归类，不做文案匹配
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgRateLimitState:
			return &RateLimitError{Message: pgErr.Message}
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.ConstraintName)
		case "42501":
			return fmt.Errorf("%w: %s", ErrPolicy, pgErr.Message)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlSignalErrno:
			return &RateLimitError{Message: myErr.Message}
		case 1062:
			return fmt.Errorf("%w: %s", ErrDuplicate, myErr.Message)
		case 1451, 1452:
			return fmt.Errorf("%w: %s", ErrForeignKey, myErr.Message)
		case 1142, 1143:
			return fmt.Errorf("%w: %s", ErrPolicy, myErr.Message)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintTrigger:
			return &RateLimitError{Message: liteErr.Error()}
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", ErrDuplicate, liteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", ErrForeignKey, liteErr.Error())
		}
		if liteErr.Code == sqlite3.ErrAuth || liteErr.Code == sqlite3.ErrPerm {
			return fmt.Errorf("%w: %s", ErrPolicy, liteErr.Error())
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	}
	return err
}
