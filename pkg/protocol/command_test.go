package protocol

import (
	"testing"

	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		name    string
		line    string
		want    command
		wantErr error
	}{
		{
			name: "route request",
			line: "REQ 3 7",
			want: command{kind: commandRoute, route: routeRequest{Src: 3, Dst: 7}},
		},
		{
			name: "speed update",
			line: "UPD 12 8.5\r\n",
			want: command{kind: commandUpdate, update: speedUpdateRequest{EdgeId: 12, Speed: 8.5}},
		},
		{
			name: "overflowing ids become invalid",
			line: "REQ 99999999999999999999 -99999999999999999999",
			want: command{kind: commandRoute, route: routeRequest{Src: -1, Dst: -1}},
		},
		{name: "empty", line: "\r\n", wantErr: ErrEmpty},
		{name: "tab only", line: "\t", wantErr: ErrUnknownCmd},
		{name: "verb only", line: "UPD", wantErr: ErrUnknownCmd},
		{name: "hex id", line: "REQ 0x1 2", wantErr: ErrUnknownCmd},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppendRoute(t *testing.T) {
	testCases := []struct {
		name    string
		cost    float64
		edgeIds []da.Index
		want    string
	}{
		{name: "empty route", cost: 0, edgeIds: []da.Index{}, want: "ROUTE 0.000 0"},
		{name: "rounds to three decimals", cost: 12.34567, edgeIds: []da.Index{4, 9}, want: "ROUTE 12.346 2 4 9"},
		{name: "large edge id", cost: 1, edgeIds: []da.Index{4294967294}, want: "ROUTE 1.000 1 4294967294"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendRoute(nil, tt.cost, tt.edgeIds)))
		})
	}
}
