package collective

//go:generate mockgen -package mocks -destination mocks/mock_comm.go github.com/brandonshearin/parsssp/collective Comm
