// Package launchbook wires the launch browsing, booking and favorites core together.
//
// An App loads its configuration from a directory, opens the local store, builds the
// GraphQL gateway and exposes every operation as a use case. Presenters for the four
// screens are created from the App and closed with it:
//
//	app, err := launchbook.New(
//		launchbook.WithLogger(logger),
//		launchbook.WithConfigDir(dir),
//		launchbook.WithStore(),
//		launchbook.WithGateway(),
//	)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	list, err := app.NewLaunchesPresenter()
package launchbook
