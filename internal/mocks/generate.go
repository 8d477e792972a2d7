// Package mocks holds gomock doubles for the service boundaries.
package mocks

//go:generate mockgen -source=../events/bus.go -destination=./event_bus_mock.go -package=mocks
//go:generate mockgen -source=../digest/sender.go -destination=./sender_mock.go -package=mocks
//go:generate mockgen -source=../chatbot/provider.go -destination=./telegram_provider_mock.go -package=mocks
