package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Gateway --dir ../domain/payment --output domain/payment --outpkg paymentmock --filename gateway_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/coupon --output domain/coupon --outpkg couponmock --filename repository_mock.go
