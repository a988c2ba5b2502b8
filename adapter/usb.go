package adapter

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/gousb"
	"github.com/sirupsen/logrus"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

// USB interface class for printers.
// Reference: http://www.usb.org/developers/defined_class
const ifaceClassPrinter = 0x07

// epsonVendorID is the vendor id shared by Epson TM-series printers, used as
// a hint when enumerating devices for diagnostics.
const epsonVendorID = 0x04b8

// USB drives a thermal printer attached over USB, identified by its
// vendor/product id pair.
type USB struct {
	vid, pid uint16
	logger   *logrus.Logger

	mu          sync.Mutex
	ctx         *gousb.Context
	device      *gousb.Device
	iface       *gousb.Interface
	cfg         *gousb.Config
	outEndpoint *gousb.OutEndpoint
	open        bool
}

func NewUSB(vid, pid uint16, logger *logrus.Logger) *USB {
	return &USB{vid: vid, pid: pid, logger: logger}
}

func (u *USB) Open() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.open {
		return nil
	}

	ctx := gousb.NewContext()
	device, err := ctx.OpenDeviceWithVIDPID(gousb.ID(u.vid), gousb.ID(u.pid))
	if err != nil || device == nil {
		u.scanDevices(ctx)
		ctx.Close()
		if err == nil {
			err = errors.New("device not found")
		}
		return fmt.Errorf("open usb printer %04x:%04x: %w", u.vid, u.pid, err)
	}

	if runtime.GOOS == "linux" {
		device.SetAutoDetach(true)
	}

	if err := u.claim(ctx, device); err != nil {
		device.Close()
		ctx.Close()
		return err
	}
	return nil
}

// claim finds the printer interface and its OUT endpoint, taking ownership
// of ctx and device on success.
func (u *USB) claim(ctx *gousb.Context, device *gousb.Device) error {
	cfgNum, err := device.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("get active config: %w", err)
	}
	cfg, err := device.Config(cfgNum)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	printerIfaceNum := -1
	for _, iface := range cfg.Desc.Interfaces {
		for _, alt := range iface.AltSettings {
			if alt.Class == ifaceClassPrinter {
				printerIfaceNum = iface.Number
				break
			}
		}
		if printerIfaceNum >= 0 {
			break
		}
	}
	if printerIfaceNum < 0 {
		cfg.Close()
		return errors.New("no printer interface found")
	}

	iface, err := cfg.Interface(printerIfaceNum, 0)
	if err != nil {
		cfg.Close()
		return fmt.Errorf("claim interface: %w", err)
	}

	var out *gousb.OutEndpoint
	for _, epDesc := range iface.Setting.Endpoints {
		if epDesc.Direction == gousb.EndpointDirectionOut {
			if ep, err := iface.OutEndpoint(epDesc.Number); err == nil {
				out = ep
				break
			}
		}
	}
	if out == nil {
		iface.Close()
		cfg.Close()
		return errors.New("cannot find output endpoint on printer")
	}

	u.ctx = ctx
	u.device = device
	u.cfg = cfg
	u.iface = iface
	u.outEndpoint = out
	u.open = true
	return nil
}

// scanDevices logs the USB printers visible on the bus so the operator can
// correct the configured VID/PID.
func (u *USB) scanDevices(ctx *gousb.Context) {
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(epsonVendorID)
	})
	if err != nil {
		u.logger.WithError(err).Warn("usb device scan failed")
		return
	}
	if len(devices) == 0 {
		u.logger.Warnf("no Epson usb device found (vendor 0x%04x)", epsonVendorID)
		return
	}
	for _, dev := range devices {
		u.logger.Infof("usb device detected: vid 0x%04x, pid 0x%04x",
			uint16(dev.Desc.Vendor), uint16(dev.Desc.Product))
		dev.Close()
	}
}

func (u *USB) Print(t *ticket.Ticket) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.open {
		return errors.New("usb printer not open")
	}
	if _, err := u.outEndpoint.Write(Encode(t)); err != nil {
		return fmt.Errorf("usb write: %w", err)
	}
	return nil
}

func (u *USB) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.open {
		return nil
	}

	var errs []error
	if u.iface != nil {
		u.iface.Close()
		u.iface = nil
	}
	if u.cfg != nil {
		if err := u.cfg.Close(); err != nil {
			errs = append(errs, err)
		}
		u.cfg = nil
	}
	if u.device != nil {
		if err := u.device.Close(); err != nil {
			errs = append(errs, err)
		}
		u.device = nil
	}
	if u.ctx != nil {
		if err := u.ctx.Close(); err != nil {
			errs = append(errs, err)
		}
		u.ctx = nil
	}
	u.outEndpoint = nil
	u.open = false

	if len(errs) > 0 {
		return fmt.Errorf("close usb printer: %v", errs)
	}
	return nil
}

func (u *USB) IsOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.open
}
