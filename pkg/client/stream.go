package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxFrameSize = 4 << 20

// ExecuteStream submits req for a streamed run. Each node result is passed to
// fn in the order the engine sends it. The call returns nil once the engine
// reports completion, a *StreamError when the engine reports a failure, and
// the error from fn if fn fails.
func (c *Client) ExecuteStream(ctx context.Context, req *ExecuteRequest, fn func(NodeResult) error) error {
	resp, err := c.send(ctx, http.MethodPost, streamPath, req, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	count := 0
	err = readEvents(resp.Body, func(data []byte) (bool, error) {
		frame, err := decodeFrame(data)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
		}

		switch frame.Type {
		case frameComplete:
			return true, nil
		case frameError:
			return false, &StreamError{Message: frame.Error}
		}

		count++
		return false, fn(frame.NodeResult)
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return fmt.Errorf("%w: %w", ctxErr, err)
		}
		return err
	}

	c.logger.Info("workflow stream completed", "results", count)
	return nil
}

// readEvents splits a server-sent event stream into events and hands each
// event's data to fn. Multiple data lines in one event are joined with a
// newline; comments and other fields are ignored. fn returns done to stop
// reading.
func readEvents(r io.Reader, fn func(data []byte) (done bool, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	var data []byte
	pending := false

	dispatch := func() (bool, error) {
		if !pending {
			return false, nil
		}
		payload := data
		data = nil
		pending = false
		return fn(payload)
	}

	for scanner.Scan() {
		line := scanner.Bytes()

		if len(line) == 0 {
			done, err := dispatch()
			if err != nil || done {
				return err
			}
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		if !bytes.Equal(field, []byte("data")) {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))

		if pending {
			data = append(data, '\n')
		}
		data = append(data, value...)
		pending = true
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read execution stream: %w", err)
	}

	done, err := dispatch()
	if err != nil {
		return err
	}
	if !done {
		return ErrStreamTruncated
	}
	return nil
}
