//go:generate mockgen -source=../../pkg/app/app.go -destination=pkg/app/app.go -package=mock_app

package mock
