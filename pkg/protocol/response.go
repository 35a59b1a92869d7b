package protocol

import (
	"strconv"

	da "github.com/lintang-b-s/livenav/pkg/datastructure"
)

// ResponseError is a protocol level failure, written to the client as "ERR <code>".
type ResponseError struct {
	code string
}

func (e *ResponseError) Error() string {
	return "ERR " + e.code
}

func (e *ResponseError) Code() string {
	return e.code
}

var (
	ErrEmpty      = &ResponseError{code: "EMPTY"}
	ErrUnknownCmd = &ResponseError{code: "UNKNOWN_CMD"}
	ErrBadNodes   = &ResponseError{code: "BAD_NODES"}
	ErrBadEdge    = &ResponseError{code: "BAD_EDGE"}
	ErrBadSpeed   = &ResponseError{code: "BAD_SPEED"}
	ErrNoRoute    = &ResponseError{code: "NO_ROUTE"}
	ErrRouteFail  = &ResponseError{code: "ROUTE_FAIL"}
	ErrNoMem      = &ResponseError{code: "NO_MEM"}
)

const ResponseAck = "ACK"

// appendRoute encodes "ROUTE <cost> <n> <edgeId>...". cost has 3 decimals.
func appendRoute(buf []byte, totalCost float64, edgeIds []da.Index) []byte {
	buf = append(buf, "ROUTE "...)
	buf = strconv.AppendFloat(buf, totalCost, 'f', 3, 64)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(len(edgeIds)), 10)
	for _, id := range edgeIds {
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(id), 10)
	}
	return buf
}
