package server

// Server объединяет HTTP сервера, отвечающие за обработку конкретных сущностей.
type Server struct {
	OffersServer
	SettingsServer
}

func NewServer(
	offersServer OffersServer,
	settingsServer SettingsServer,
) Server {
	return Server{
		OffersServer:   offersServer,
		SettingsServer: settingsServer,
	}
}
