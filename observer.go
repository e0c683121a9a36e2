package relayq

import "fmt"

// LoggerObserver routes observed traffic to a Logger.
type LoggerObserver struct {
	logger Logger
}

// NewLoggerObserver creates an observer writing to the given logger.
func NewLoggerObserver(logger Logger) *LoggerObserver {
	return &LoggerObserver{logger: logger}
}

func (o *LoggerObserver) Info(msg string) {
	o.logger.Info(msg)
}

func (o *LoggerObserver) Error(msg string) {
	o.logger.Error(msg)
}

func (o *LoggerObserver) Request(method, url string, headers map[string]string, body []byte) {
	o.logger.Info("outgoing request", "method", method, "url", url, "headers", fmt.Sprint(headers), "bodyBytes", len(body))
}

func (o *LoggerObserver) Response(method, url string, status int, body []byte) {
	o.logger.Info("incoming response", "method", method, "url", url, "status", status, "bodyBytes", len(body))
}

// observeRequest and observeResponse invoke the observer behind a recover
// guard: observation is best-effort and must never alter dispatch control
// flow. Observer panics are counted, nothing more.

func (c *Client) observeRequest(req Request, url string) {
	if c.observer == nil {
		return
	}
	defer c.recoverObserver()
	c.observer.Request(req.Method, url, req.Headers, req.Body)
}

func (c *Client) observeResponse(req Request, url string, status int, body []byte) {
	if c.observer == nil {
		return
	}
	defer c.recoverObserver()
	c.observer.Response(req.Method, url, status, body)
}

func (c *Client) observeError(msg string) {
	if c.observer == nil {
		return
	}
	defer c.recoverObserver()
	c.observer.Error(msg)
}

func (c *Client) recoverObserver() {
	if r := recover(); r != nil {
		c.metrics.RecordObserverPanic()
		if c.logger != nil {
			c.logger.Warn("observer panicked", "panic", fmt.Sprint(r))
		}
	}
}
