package shared

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
)

var reNetezzaDsn = regexp.MustCompile(`^netezza://.+?/.+?@//.+:[0-9]+/.+$`)

// NetezzaConnectionDetails holds a DSN of the form netezza://user/pass@//host:port/db?k=v.
type NetezzaConnectionDetails struct {
	Dsn string `errorTxt:"data source name i.e. connect string" mandatory:"yes"`
}

// String hides the password.
func (d NetezzaConnectionDetails) String() string {
	if !reNetezzaDsn.MatchString(d.Dsn) {
		return "<unparsable dsn>"
	}
	user, _, rest := d.split()
	return fmt.Sprintf("%v://%v/xxxxx@%v", constants.ConnectionTypeNetezza, user, rest)
}

func (d NetezzaConnectionDetails) Parse() error {
	if !reNetezzaDsn.MatchString(d.Dsn) {
		return errors.New("unsupported Netezza DSN format")
	}
	return nil
}

func (d NetezzaConnectionDetails) split() (user, pass, rest string) {
	dsn := strings.TrimPrefix(d.Dsn, constants.ConnectionTypeNetezza+"://")
	i := strings.LastIndex(dsn, "@")
	userPwd := dsn[:i]
	rest = dsn[i+1:]
	user, pass = helper.Split(userPwd, "/")
	return
}

// GetNzgoConnectionString converts the DSN to the space separated key=value format required by
// the nzgo library.
func (d NetezzaConnectionDetails) GetNzgoConnectionString() (string, error) {
	if err := d.Parse(); err != nil {
		return "", err
	}
	user, pass, rest := d.split()
	rest = strings.TrimLeft(rest, "/")
	hostPort, dbNameParams := helper.Split(rest, "/")
	i := strings.LastIndex(hostPort, ":")
	host, port := hostPort[:i], hostPort[i+1:]
	dbName, params := helper.Split(dbNameParams, "?")
	params = strings.Replace(params, "&", " ", -1)
	connStr := strings.TrimSpace(fmt.Sprintf("user=%s password='%s' host=%s port=%s dbname=%s logLevel=Off %s",
		user, helper.EscapeSingleQuotes(pass), host, port, dbName, params))
	return connStr, nil
}

func (d NetezzaConnectionDetails) GetScheme() (string, error) {
	return constants.ConnectionTypeNetezza, nil
}

func (d NetezzaConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultDsnConnectionKeyNames.Dsn] = d.Dsn
	return m
}
