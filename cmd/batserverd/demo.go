package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
	"github.com/galudino/mtb-bluetooth-le-battery-server/adv"
	"github.com/galudino/mtb-bluetooth-le-battery-server/att"
	"github.com/galudino/mtb-bluetooth-le-battery-server/bas"
	"github.com/galudino/mtb-bluetooth-le-battery-server/gap"
	"github.com/galudino/mtb-bluetooth-le-battery-server/gatt"
	"github.com/galudino/mtb-bluetooth-le-battery-server/led"
	"github.com/galudino/mtb-bluetooth-le-battery-server/ota"
)

// demoServer wires the server to logging fakes and a scripted central.
type demoServer struct {
	events  chan ble.Event
	done    chan struct{}
	session *ble.Session
	profile *gatt.Profile
	server  *att.Server
	task    *bas.Task
	adv     *demoAdvertiser
}

func newDemoServer(name string, interval time.Duration, mtu uint16) *demoServer {
	events := make(chan ble.Event, 32)
	done := make(chan struct{})

	session := ble.NewSession()
	profile := gatt.NewProfile(session)

	advertiser := &demoAdvertiser{
		payload: adv.Advertisement(name, gatt.BatteryServiceUUID, gatt.OTAServiceUUID),
		events:  events,
	}
	indicator := led.NewPWMIndicator(demoPWM{})
	gapM := gap.NewMachine(session, advertiser, indicator)

	otaM := ota.NewMachine(ota.Handles{
		ControlPointCCCD: profile.OTAControlPointCCCD,
		ControlPoint:     profile.OTAControlPointValue,
		Data:             profile.OTADataValue,
	}, demoAgent{}, &demoRestarter{done: done}, session)

	resp := demoResponder{}
	server := att.NewServer(profile.Store, resp, gapM, otaM, mtu)

	task := bas.NewTask(session, profile.Store, resp, profile.BatteryLevelValue)
	task.Interval = interval

	return &demoServer{
		events:  events,
		done:    done,
		session: session,
		profile: profile,
		server:  server,
		task:    task,
		adv:     advertiser,
	}
}

func (d *demoServer) run() error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.task.Run(ctx)
	go d.script()

	for {
		select {
		case e := <-d.events:
			d.server.Dispatch(e)
		case s := <-sigc:
			log.Infof("got signal %v, shutting down", s)
			return nil
		case <-d.done:
			log.Infof("device restart requested, exiting")
			return nil
		}
	}
}

// script plays one central's session: connect, subscribe to battery
// notifications, then run a firmware upgrade through to the reboot.
func (d *demoServer) script() {
	push := func(e ble.Event) { d.events <- e }
	req := func(r *ble.AttributeRequest) {
		r.ConnID = 1
		if r.Cap == 0 {
			r.Cap = att.DefaultMTU - 1
		}
		push(ble.Event{Kind: ble.EvtAttributeRequest, Request: r})
	}

	d.adv.StartAdvertising()

	time.Sleep(500 * time.Millisecond)
	push(ble.Event{Kind: ble.EvtConnection, Connection: ble.ConnectionStatus{
		Connected:   true,
		ConnID:      1,
		PeerAddress: [6]byte{0xC0, 0xFF, 0xEE, 0x00, 0x00, 0x01},
	}})
	push(ble.Event{Kind: ble.EvtAdvertisingState, AdvertisingOn: false})

	req(&ble.AttributeRequest{Opcode: ble.ExchangeMTURequestCode, ClientRxMTU: 158})
	req(&ble.AttributeRequest{
		Opcode:      ble.ReadByTypeRequestCode,
		StartHandle: 0x0001,
		EndHandle:   0xFFFF,
		Type:        gatt.DeviceNameUUID,
	})
	req(&ble.AttributeRequest{
		Opcode: ble.WriteRequestCode,
		Handle: d.profile.BatteryLevelCCCD,
		Value:  []byte{0x01, 0x00},
	})

	// Let a few battery notifications through.
	time.Sleep(5 * d.task.Interval / 2)

	req(&ble.AttributeRequest{
		Opcode: ble.WriteRequestCode,
		Handle: d.profile.OTAControlPointCCCD,
		Value:  []byte{0x02, 0x00},
	})
	req(&ble.AttributeRequest{
		Opcode: ble.WriteRequestCode,
		Handle: d.profile.OTAControlPointValue,
		Value:  []byte{byte(ota.CommandPrepareDownload)},
	})
	req(&ble.AttributeRequest{
		Opcode: ble.WriteRequestCode,
		Handle: d.profile.OTAControlPointValue,
		Value:  []byte{byte(ota.CommandDownload)},
	})
	for i := 0; i < 4; i++ {
		req(&ble.AttributeRequest{
			Opcode: ble.WriteCommandCode,
			Handle: d.profile.OTADataValue,
			Value:  []byte{byte(i), 0xDE, 0xAD, 0xBE, 0xEF},
		})
	}
	req(&ble.AttributeRequest{
		Opcode: ble.WriteRequestCode,
		Handle: d.profile.OTAControlPointValue,
		Value:  []byte{byte(ota.CommandVerify)},
	})
	req(&ble.AttributeRequest{Opcode: ble.HandleValueConfirmationCode})
}

// demoResponder logs responses instead of putting them on a radio.
type demoResponder struct{}

func (demoResponder) SendError(connID uint16, op ble.Opcode, handle uint16, status ble.AttError) {
	log.Infof("rsp: error conn=%d op=0x%02X handle=0x%04X status=%v", connID, op, handle, status)
}

func (demoResponder) SendReadRsp(connID uint16, op ble.Opcode, value []byte) ble.AttError {
	log.Infof("rsp: read conn=%d op=0x%02X value=[% X]", connID, op, value)
	return ble.ErrSuccess
}

func (demoResponder) SendReadByTypeRsp(connID uint16, op ble.Opcode, pairLen int, data []byte) ble.AttError {
	log.Infof("rsp: read-by-type conn=%d op=0x%02X pairlen=%d data=[% X]", connID, op, pairLen, data)
	return ble.ErrSuccess
}

func (demoResponder) SendReadMultiRsp(connID uint16, op ble.Opcode, data []byte) ble.AttError {
	log.Infof("rsp: read-multi conn=%d op=0x%02X data=[% X]", connID, op, data)
	return ble.ErrSuccess
}

func (demoResponder) SendWriteRsp(connID uint16, op ble.Opcode, handle uint16) {
	log.Infof("rsp: write conn=%d op=0x%02X handle=0x%04X", connID, op, handle)
}

func (demoResponder) SendExecWriteRsp(connID uint16, op ble.Opcode) {
	log.Infof("rsp: exec-write conn=%d op=0x%02X", connID, op)
}

func (demoResponder) SendMTURsp(connID uint16, clientRxMTU, serverRxMTU uint16) {
	log.Infof("rsp: mtu conn=%d client=%d server=%d", connID, clientRxMTU, serverRxMTU)
}

func (demoResponder) Notify(connID uint16, handle uint16, value []byte) (int, error) {
	log.Infof("ntf: conn=%d handle=0x%04X value=[% X]", connID, handle, value)
	return len(value), nil
}

// demoAdvertiser reports advertising state back as a link-layer event.
type demoAdvertiser struct {
	payload adv.Packet
	events  chan<- ble.Event
}

func (a *demoAdvertiser) StartAdvertising() error {
	log.Infof("adv: start name=%q payload=[% X]", a.payload.LocalName(), []byte(a.payload))
	a.events <- ble.Event{Kind: ble.EvtAdvertisingState, AdvertisingOn: true}
	return nil
}

// demoPWM logs the duty changes the status LED would make.
type demoPWM struct{}

func (demoPWM) SetDutyCycle(percent uint8, freqHz uint32) error {
	log.Infof("led: duty=%d%% freq=%dHz", percent, freqHz)
	return nil
}

func (demoPWM) Start() error { return nil }
func (demoPWM) Stop() error  { return nil }

// demoAgent fakes the external OTA collaborator.
type demoAgent struct{}

func (demoAgent) Start(p ota.Params) (ota.AgentSession, error) {
	log.Infof("ota agent: start reboot=%v validate=%v", p.RebootAfterOTA, p.ValidateAfterReboot)
	return &demoAgentSession{}, nil
}

type demoAgentSession struct {
	state    ota.AgentState
	received int
}

func (s *demoAgentSession) Prepare(connID, configDescriptor uint16) error {
	log.Infof("ota agent: prepare conn=%d cfg=0x%04X", connID, configDescriptor)
	return nil
}

func (s *demoAgentSession) Download(payload []byte, connID, configDescriptor uint16) error {
	log.Infof("ota agent: download starting conn=%d", connID)
	s.state = ota.AgentDownloading
	return nil
}

func (s *demoAgentSession) Write(payload []byte) error {
	s.received += len(payload)
	return nil
}

func (s *demoAgentSession) Verify(payload []byte, connID uint16) error {
	log.Infof("ota agent: verifying %d bytes", s.received)
	s.state = ota.AgentComplete
	return nil
}

func (s *demoAgentSession) Abort() error {
	s.state = ota.AgentFailed
	return nil
}

func (s *demoAgentSession) State() ota.AgentState { return s.state }

func (s *demoAgentSession) Stop() {
	log.Infof("ota agent: stopped")
}

// demoRestarter ends the demo in place of a hardware reset.
type demoRestarter struct {
	done chan struct{}
}

func (r *demoRestarter) Restart() {
	log.Infof("ota: rebooting into new image")
	close(r.done)
}
