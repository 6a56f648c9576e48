//go:build !windows

package action

import (
	"syscall"
	"testing"

	"github.com/Brutus1066/portr/pkg/model"
)

func TestTerminateClassifiesSignalErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want model.Kind
	}{
		{"vanished", syscall.ESRCH, model.KindNotFound},
		{"denied", syscall.EPERM, model.KindPermissionDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k := &Killer{signal: func(int, string) error { return tc.err }}
			_, err := k.Terminate(plainEntry(10), Options{})
			if !model.IsKind(err, tc.want) {
				t.Fatalf("got %v, want kind %v", err, tc.want)
			}
		})
	}
}
