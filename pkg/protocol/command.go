package protocol

import (
	"errors"
	"strconv"
	"strings"
)

const (
	verbRoute  = "REQ"
	verbUpdate = "UPD"
)

type commandKind uint8

const (
	commandRoute commandKind = iota + 1
	commandUpdate
)

type routeRequest struct {
	Src int64 `validate:"vertexid"`
	Dst int64 `validate:"vertexid"`
}

type speedUpdateRequest struct {
	EdgeId int64   `validate:"edgeid"`
	Speed  float64 `validate:"speed"`
}

type command struct {
	kind   commandKind
	route  routeRequest
	update speedUpdateRequest
}

// TrimLine strips the trailing line terminators. other whitespace is kept.
func TrimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}

/*
parseCommand. a command is exactly three whitespace separated fields:

	REQ <src:int> <dst:int>
	UPD <edgeId:int> <speed:float>

anything else is ErrUnknownCmd. integers that overflow int64 are kept as -1 so that range
validation rejects them with the command specific error.
*/
func parseCommand(line string) (command, error) {
	line = TrimLine(line)
	if line == "" {
		return command{}, ErrEmpty
	}

	fields := strings.Fields(line)
	if len(fields) != 3 {
		return command{}, ErrUnknownCmd
	}

	switch fields[0] {
	case verbRoute:
		src, err := parseIdField(fields[1])
		if err != nil {
			return command{}, err
		}
		dst, err := parseIdField(fields[2])
		if err != nil {
			return command{}, err
		}
		return command{kind: commandRoute, route: routeRequest{Src: src, Dst: dst}}, nil

	case verbUpdate:
		edgeId, err := parseIdField(fields[1])
		if err != nil {
			return command{}, err
		}
		speed, err := strconv.ParseFloat(fields[2], 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return command{}, ErrUnknownCmd
		}
		return command{kind: commandUpdate, update: speedUpdateRequest{EdgeId: edgeId, Speed: speed}}, nil

	default:
		return command{}, ErrUnknownCmd
	}
}

func parseIdField(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return -1, nil
	}
	return 0, ErrUnknownCmd
}
