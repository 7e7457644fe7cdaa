// Package link reads live association details for an interface over
// nl80211.
package link

import (
	"errors"
	"fmt"

	nl "github.com/mdlayher/wifi"
)

var (
	ErrNoInterface   = errors.New("no such nl80211 interface")
	ErrNotAssociated = errors.New("interface is not associated")
)

// Info describes the current association of an interface.
type Info struct {
	SSID      string
	BSSID     string
	Frequency int // MHz
	Signal    int // dBm, 0 when unknown
	TxBitrate int // bits per second, 0 when unknown
}

// Quality maps Signal onto a 0-100 scale, with -100 dBm as 0 and -50 dBm
// or better as 100.
func (i Info) Quality() int {
	if i.Signal == 0 {
		return 0
	}
	q := 2 * (i.Signal + 100)
	switch {
	case q < 0:
		return 0
	case q > 100:
		return 100
	}
	return q
}

// Band names the frequency band.
func (i Info) Band() string {
	switch {
	case i.Frequency >= 5925:
		return "6 GHz"
	case i.Frequency >= 4900:
		return "5 GHz"
	case i.Frequency >= 2400:
		return "2.4 GHz"
	}
	return ""
}

type nl80211 interface {
	Interfaces() ([]*nl.Interface, error)
	BSS(ifi *nl.Interface) (*nl.BSS, error)
	StationInfo(ifi *nl.Interface) ([]*nl.StationInfo, error)
	Close() error
}

// Client reads link details from the kernel.
type Client struct {
	c nl80211
}

// Open connects to nl80211. It fails on systems without it.
func Open() (*Client, error) {
	c, err := nl.New()
	if err != nil {
		return nil, fmt.Errorf("open nl80211: %w", err)
	}
	return &Client{c: c}, nil
}

func (c *Client) Close() error {
	return c.c.Close()
}

// Link returns the association details of the named interface.
func (c *Client) Link(name string) (Info, error) {
	ifaces, err := c.c.Interfaces()
	if err != nil {
		return Info{}, fmt.Errorf("list interfaces: %w", err)
	}

	var ifi *nl.Interface
	for _, i := range ifaces {
		if i.Name == name {
			ifi = i
			break
		}
	}
	if ifi == nil {
		return Info{}, fmt.Errorf("%q: %w", name, ErrNoInterface)
	}

	bss, err := c.c.BSS(ifi)
	if err != nil {
		return Info{}, fmt.Errorf("%q: %w: %s", name, ErrNotAssociated, err)
	}

	info := Info{
		SSID:      bss.SSID,
		BSSID:     bss.BSSID.String(),
		Frequency: bss.Frequency,
	}

	// Station info is best effort; some drivers do not report it.
	if stations, err := c.c.StationInfo(ifi); err == nil {
		for _, st := range stations {
			if st.HardwareAddr.String() == info.BSSID || len(stations) == 1 {
				info.Signal = st.Signal
				info.TxBitrate = st.TransmitBitrate
				break
			}
		}
	}
	return info, nil
}
