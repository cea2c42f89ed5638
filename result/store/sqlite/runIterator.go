package sqlite

import (
	"database/sql"

	"github.com/brandonshearin/parsssp/result"
)

type runIterator struct {
	rows       *sql.Rows
	lastErr    error
	latchedRun *result.Run
}

func (i *runIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	run, err := scanRun(i.rows)
	if err != nil {
		i.lastErr = err
		return false
	}
	i.latchedRun = run
	return true
}

func (i *runIterator) Run() *result.Run {
	return i.latchedRun
}

func (i *runIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

func (i *runIterator) Close() error {
	return i.rows.Close()
}
