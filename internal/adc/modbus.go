package adc

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
	"github.com/sirupsen/logrus"
)

// ModbusConfig describes the serial link to the analog input module.
type ModbusConfig struct {
	Device  string // e.g. /dev/ttyUSB0
	Baud    int
	SlaveID byte
	Timeout time.Duration
}

// ModbusReader reads raw conversions from the input registers of a Modbus
// RTU analog module. Channel numbers map directly to register addresses.
type ModbusReader struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

// NewModbusReader opens the serial transport and returns a reader.
func NewModbusReader(cfg ModbusConfig) (*ModbusReader, error) {
	handler := modbus.NewRTUClientHandler(cfg.Device)
	handler.BaudRate = cfg.Baud
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.SlaveId = cfg.SlaveID
	handler.Timeout = cfg.Timeout
	if handler.Timeout == 0 {
		handler.Timeout = 500 * time.Millisecond
	}

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Device, err)
	}

	return &ModbusReader{
		handler: handler,
		client:  modbus.NewClient(handler),
	}, nil
}

// Read returns the raw conversion for one channel.
func (r *ModbusReader) Read(channel int) (int, error) {
	b, err := r.client.ReadInputRegisters(uint16(channel), 1)
	if err != nil {
		return 0, fmt.Errorf("read input register %d: %w", channel, err)
	}
	if len(b) != 2 {
		return 0, fmt.Errorf("read input register %d: short response (%d bytes)", channel, len(b))
	}
	return int(binary.BigEndian.Uint16(b)), nil
}

// Warmup reads and discards count conversions per channel. The module's
// first conversions after power-up read low while the reference settles, so
// the bring-up sequence throws them away before the control loop starts.
func (r *ModbusReader) Warmup(channels []int, count int) {
	for i := 0; i < count; i++ {
		for _, ch := range channels {
			if _, err := r.Read(ch); err != nil {
				logrus.Debugf("adc warmup read channel %d: %v", ch, err)
			}
		}
	}
}

// Close closes the serial transport.
func (r *ModbusReader) Close() error {
	return r.handler.Close()
}
