package mariadb

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/opustools/opustools-go/internal/port"
)

const errDupEntry = 1062

// mapErr turns a unique-key violation into port.ErrDuplicate.
func mapErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("%w: %s", port.ErrDuplicate, me.Message)
	}
	return err
}
