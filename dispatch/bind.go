// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"fmt"

	"github.com/sramlab/sramrig/reader"
)

// BindReader registers the platform's standard command → capability
// bindings against r: power_on, power_off, status, ping, read, write,
// write_invert, sensors, load, exec, retr.
func BindReader(d *Dispatcher, r *reader.Reader) {
	d.AddCommand(CommandPattern{"command": "power_on"}, func(CommandRecord) (interface{}, error) {
		return nil, r.PowerOn()
	})
	d.AddCommand(CommandPattern{"command": "power_off"}, func(CommandRecord) (interface{}, error) {
		return nil, r.PowerOff()
	})
	d.AddCommand(CommandPattern{"command": "status"}, func(CommandRecord) (interface{}, error) {
		return r.Status()
	})
	d.AddCommand(CommandPattern{"command": "ping"}, func(CommandRecord) (interface{}, error) {
		return r.Ping()
	})
	d.AddCommand(CommandPattern{"command": "read"}, func(CommandRecord) (interface{}, error) {
		return r.Read()
	})
	d.AddCommand(CommandPattern{"command": "write"}, func(rec CommandRecord) (interface{}, error) {
		device, offset, err := deviceOffset(rec)
		if err != nil {
			return nil, err
		}
		data, err := byteList(rec, "data")
		if err != nil {
			return nil, err
		}
		return r.Write(device, offset, data)
	})
	d.AddCommand(CommandPattern{"command": "write_invert"}, func(CommandRecord) (interface{}, error) {
		return r.WriteInvert()
	})
	d.AddCommand(CommandPattern{"command": "sensors"}, func(CommandRecord) (interface{}, error) {
		return r.Sensors()
	})
	d.AddCommand(CommandPattern{"command": "load"}, func(rec CommandRecord) (interface{}, error) {
		device, err := stringField(rec, "device")
		if err != nil {
			return nil, err
		}
		source, err := stringField(rec, "source")
		if err != nil {
			return nil, err
		}
		return r.Load(device, []byte(source))
	})
	d.AddCommand(CommandPattern{"command": "exec"}, func(rec CommandRecord) (interface{}, error) {
		device, err := stringField(rec, "device")
		if err != nil {
			return nil, err
		}
		reset, _ := rec["reset"].(bool)
		return r.Exec(device, reset)
	})
	d.AddCommand(CommandPattern{"command": "retr"}, func(rec CommandRecord) (interface{}, error) {
		device, err := stringField(rec, "device")
		if err != nil {
			return nil, err
		}
		return r.Retrieve(device, maxRetrieveBlocks)
	})
}

// maxRetrieveBlocks bounds how many RETR chunks one command can pull,
// as a safety cap against a misbehaving device that never reports a
// short block — Retrieve normally stops well before this on its own.
const maxRetrieveBlocks = 4096

func stringField(rec CommandRecord, key string) (string, error) {
	v, ok := rec[key].(string)
	if !ok {
		return "", fmt.Errorf("dispatch: command record missing string field %q", key)
	}
	return v, nil
}

func deviceOffset(rec CommandRecord) (string, int, error) {
	device, err := stringField(rec, "device")
	if err != nil {
		return "", 0, err
	}
	offsetF, ok := rec["offset"].(float64)
	if !ok {
		return "", 0, fmt.Errorf("dispatch: command record missing numeric field %q", "offset")
	}
	return device, int(offsetF), nil
}

func byteList(rec CommandRecord, key string) ([]byte, error) {
	raw, ok := rec[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("dispatch: command record missing list field %q", key)
	}
	out := make([]byte, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok || f < 0 || f > 255 {
			return nil, fmt.Errorf("dispatch: %s[%d] is not a byte value 0..255", key, i)
		}
		out[i] = byte(f)
	}
	return out, nil
}
