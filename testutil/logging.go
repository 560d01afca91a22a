// Package testutil holds helpers shared by the activator's tests. Importing
// it silences logrus unless the tests run verbosely.
package testutil

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetLevel(logrus.TraceLevel)

	if !isVerbose(os.Args) {
		logrus.StandardLogger().SetOutput(ioutil.Discard)
	}
}

func isVerbose(args []string) bool {
	for _, arg := range args {
		switch strings.TrimPrefix(arg, "-") {
		case "test.v", "test.v=true":
			return true
		}
	}
	return false
}
