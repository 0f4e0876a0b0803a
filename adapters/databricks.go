package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	dbsql "github.com/databricks/databricks-sql-go"
	"github.com/databricks/databricks-sql-go/auth"
	dbsqllog "github.com/databricks/databricks-sql-go/logger"

	"github.com/hivekrb/hivekrb/auth/kerberos"
	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/core/builders"
)

// Register client
func init() {
	_ = register(&Databricks{}, "databricks")
}

var _ core.Adapter = (*Databricks)(nil)

var errNoSPNEGO = errors.New("identity can't produce SPNEGO tokens")

// Databricks connects through databricks-sql-go. The driver speaks the
// Databricks flavour of TCLIService, so it is only usable against gateways
// which understand it. Plain HiveServer2 is served by Hive.
type Databricks struct{}

// spnegoSigner is implemented by identities which can sign HTTP requests.
type spnegoSigner interface {
	SetSPNEGOHeader(req *http.Request, spn string) error
}

var _ auth.Authenticator = (*spnegoAuthenticator)(nil)

// spnegoAuthenticator plugs an identity into the databricks thrift transport.
type spnegoAuthenticator struct {
	signer spnegoSigner
	spn    string
}

func (a *spnegoAuthenticator) Authenticate(req *http.Request) error {
	return a.signer.SetSPNEGOHeader(req, a.spn)
}

// SetDriverLog sends the databricks-sql-go log to w. Only warnings and errors
// are kept unless verbose is set.
func SetDriverLog(w io.Writer, verbose bool) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	dbsqllog.SetLogOutput(w)
	return dbsqllog.SetLogLevel(level)
}

// Connect parses the target and returns a new core.Driver.
// target has the form of:
//
//	hive2://<host>:<port>/<database>;principal=<service principal>[;httpPath=<path>]
//
// The driver picks plain http only for "localhost", every other host is
// reached over https.
func (d *Databricks) Connect(ctx context.Context, target string, identity core.Identity) (core.Driver, error) {
	ep, err := core.ParseTarget(target)
	if err != nil {
		return nil, err
	}

	signer, ok := identity.(spnegoSigner)
	if !ok {
		return nil, fmt.Errorf("databricks: %w", errNoSPNEGO)
	}

	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(ep.Host),
		dbsql.WithPort(ep.Port),
		dbsql.WithHTTPPath(ep.HTTPPath),
		// a failed call is reported at once, the run never replays statements
		dbsql.WithRetries(-1, 0, 0),
		dbsql.WithAuthenticator(&spnegoAuthenticator{
			signer: signer,
			spn:    kerberos.ServiceSPN(ep.RemotePrincipal, ep.Host),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid databricks connection parameters: %w", err)
	}

	c := builders.NewClient(sql.OpenDB(connector),
		builders.WithCustomTypeProcessor("timestamp", formatTimestamp))

	conn, err := c.Conn(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed opening databricks session: %w", err)
	}

	return &databricksDriver{
		c:    c,
		conn: conn,
	}, nil
}

// formatTimestamp renders timestamps the way Hive prints them.
func formatTimestamp(val any) any {
	ts, ok := val.(time.Time)
	if !ok {
		return val
	}
	return ts.Format("2006-01-02 15:04:05.999999999")
}
