package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/emersion/go-autostart"
	"github.com/getlantern/systray"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the panel launcher in the system tray",
	Run: func(cmd *cobra.Command, args []string) {
		systray.Run(onTrayReady, nil)
	},
}

func init() {
	RootCmd.AddCommand(trayCmd)
}

func trayAutostart() *autostart.App {
	exe, err := os.Executable()
	if err != nil {
		exe = "mcpanel-cli"
	}
	return &autostart.App{
		Name:        "mcpanel",
		DisplayName: "mcpanel",
		Exec:        []string{exe, "tray"},
	}
}

func onTrayReady() {
	systray.SetTitle("mcpanel")
	systray.SetTooltip("Game server control panel")

	openItem := systray.AddMenuItem("Open Panel", "Open the panel in the browser")
	systray.AddSeparator()
	loginItem := systray.AddMenuItemCheckbox("Start at login", "Run the tray launcher on login", trayAutostart().IsEnabled())
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Quit the tray launcher")

	go func() {
		for {
			select {
			case <-openItem.ClickedCh:
				if err := browser.OpenURL(BaseURL); err != nil {
					log.Printf("could not open browser: %v", err)
				}
			case <-loginItem.ClickedCh:
				app := trayAutostart()
				if loginItem.Checked() {
					if err := app.Disable(); err != nil {
						log.Printf("could not disable autostart: %v", err)
						continue
					}
					loginItem.Uncheck()
				} else {
					if err := app.Enable(); err != nil {
						log.Printf("could not enable autostart: %v", err)
						continue
					}
					loginItem.Check()
				}
			case <-quitItem.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()

	fmt.Println("Tray launcher running.")
}
