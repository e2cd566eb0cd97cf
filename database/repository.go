/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/smarttech/storefront/model"
)

// IDataSource groups the storage operations the storefront needs.
type IDataSource interface {
	product
	customer
	order
	chat
	admin
	dashboard
	Ping(ctx context.Context) error
}

type product interface {
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListActiveProducts(ctx context.Context, skip, limit int) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
}

type customer interface {
	GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error)
	CreateCustomer(ctx context.Context, c model.Customer) (*model.Customer, error)
}

type order interface {
	CreateOrder(ctx context.Context, o model.Order) (*model.Order, error)
	// GetOrder loads the order with its customer and product.
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	UpdateOrder(ctx context.Context, o *model.Order) error
	DeleteOrder(ctx context.Context, id int64) error
}

type chat interface {
	GetOrCreateChatSession(ctx context.Context, sessionID string) (*model.ChatSession, error)
	SaveChatMessage(ctx context.Context, m model.ChatMessage) (*model.ChatMessage, error)
	GetChatHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
}

type admin interface {
	CreateAdmin(ctx context.Context, a model.Admin) (*model.Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	AdminTaken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
}

type dashboard interface {
	CountOrdersByStatus(ctx context.Context) (map[model.OrderStatus]int, error)
	TotalRevenue(ctx context.Context, statuses []model.OrderStatus) (decimal.Decimal, error)
	CountCustomers(ctx context.Context) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
}
