package integration_tests

import "github.com/planweave/planweave/internal/app"

func synthesizeConfig() *app.Config {
	return &app.Config{Mode: app.ModeSynthesize, InputPath: "-"}
}
