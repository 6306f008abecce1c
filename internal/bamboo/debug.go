package bamboo

import (
	"fmt"
	"strconv"
)

const logPrefix = "[BambooHR]"

func (c *Client) logRequest(method, path string, params Params) {
	if !c.debug {
		return
	}
	c.logger.Debug(fmt.Sprintf("%s %s %s", logPrefix, method, path))
	if len(params) > 0 {
		c.logger.Debug(fmt.Sprintf("%s Params: %s", logPrefix, params))
	}
}

func (c *Client) logResponse(statusCode int, path string) {
	if !c.debug {
		return
	}
	c.logger.Debug(fmt.Sprintf("%s Response %d from %s", logPrefix, statusCode, path))
}

// logFailure records the raw failure before it is classified. A zero status
// means no response was received.
func (c *Client) logFailure(statusCode int, path, message string) {
	if !c.debug {
		return
	}
	status := "none"
	if statusCode != 0 {
		status = strconv.Itoa(statusCode)
	}
	c.logger.Error(fmt.Sprintf("%s Error %s from %s: %s", logPrefix, status, path, message))
}
