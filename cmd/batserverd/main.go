// Command batserverd runs the GATT battery server against a scripted
// demo link layer: it advertises, accepts one central, streams battery
// notifications, and walks a firmware upgrade to the reboot.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/galudino/mtb-bluetooth-le-battery-server/att"
	"github.com/galudino/mtb-bluetooth-le-battery-server/bas"
	"github.com/galudino/mtb-bluetooth-le-battery-server/gatt"
)

func main() {
	app := cli.NewApp()

	app.Name = "batserverd"
	app.Usage = "GATT battery server with OTA firmware upgrade"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "name, n",
			Value: gatt.DeviceName,
			Usage: "device name to advertise",
		},
		cli.DurationFlag{
			Name:  "interval, i",
			Value: bas.DefaultInterval,
			Usage: "battery notification interval",
		},
		cli.IntFlag{
			Name:  "mtu",
			Value: att.DefaultMTU,
			Usage: "server receive MTU",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "enable debug logging",
		},
	}
	app.Action = run

	app.Run(os.Args)
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	d := newDemoServer(c.String("name"), c.Duration("interval"), uint16(c.Int("mtu")))
	return d.run()
}
