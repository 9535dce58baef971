package commands

import (
	"fmt"
	"strconv"

	"github.com/skratchdot/open-golang/open"
)

// browserOpen opens a URL in the default browser.
var browserOpen = open.Start

func parseID(kind, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}

	return id, nil
}
