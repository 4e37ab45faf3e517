package implementation

import (
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("lspytype.server")
