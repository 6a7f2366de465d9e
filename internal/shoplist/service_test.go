package shoplist_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplist/internal/model"
	"shoplist/internal/shoplist"
	mock_shoplist "shoplist/internal/shoplist/mocks"
)

func TestService_Generate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	orders := mock_shoplist.NewMockOrderLoader(ctrl)
	mappings := mock_shoplist.NewMockMappingLoader(ctrl)
	orders.EXPECT().Source().Return("Order.toship.20250101.xlsx").AnyTimes()
	mappings.EXPECT().Source().Return("https://example.com/map.xlsx").AnyTimes()

	gomock.InOrder(
		orders.EXPECT().LoadOrders(ctx).Return([]model.OrderRow{
			order("【Acme】Widget", nil, "3"),
		}, nil),
		mappings.EXPECT().LoadMappings(ctx).Return([]model.MappingRow{
			mapping("【Acme】x", "Acme Shop"),
		}, nil),
	)

	svc := shoplist.NewService(orders, mappings, shoplist.Options{})
	list, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Shop"}, list.VendorNames())
}

func TestService_Generate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		orderErr   error
		mappingErr error
		wantSide   shoplist.Side
	}{
		{
			name:     "local order file unreadable",
			orderErr: errors.New("open Order.toship.xlsx: no such file or directory"),
			wantSide: shoplist.SideLocal,
		},
		{
			name:       "remote mapping is a viewer page",
			mappingErr: errors.New("received text/html instead of a spreadsheet"),
			wantSide:   shoplist.SideRemote,
		},
		{
			name:       "loader already classified the failure",
			mappingErr: &shoplist.LoadError{Side: shoplist.SideMappingFile, Source: "map.xlsx", Err: errors.New("bad zip")},
			wantSide:   shoplist.SideMappingFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ctx := context.Background()
			orders := mock_shoplist.NewMockOrderLoader(ctrl)
			mappings := mock_shoplist.NewMockMappingLoader(ctrl)
			orders.EXPECT().Source().Return("orders.xlsx").AnyTimes()
			mappings.EXPECT().Source().Return("https://example.com/map.xlsx").AnyTimes()

			if tt.orderErr != nil {
				orders.EXPECT().LoadOrders(ctx).Return(nil, tt.orderErr)
				mappings.EXPECT().LoadMappings(gomock.Any()).Times(0)
			} else {
				orders.EXPECT().LoadOrders(ctx).Return([]model.OrderRow{}, nil)
				mappings.EXPECT().LoadMappings(ctx).Return(nil, tt.mappingErr)
			}

			svc := shoplist.NewService(orders, mappings, shoplist.Options{})
			list, err := svc.Generate(ctx)
			assert.Nil(t, list)
			require.Error(t, err)
			assert.Equal(t, shoplist.KindLoad, shoplist.Classify(err))

			var loadErr *shoplist.LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.wantSide, loadErr.Side)
			assert.NotEmpty(t, shoplist.Hints(err))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, shoplist.KindNone, shoplist.Classify(nil))
	assert.Equal(t, shoplist.KindFileDiscovery, shoplist.Classify(&shoplist.FileDiscoveryError{Dir: ".", Pattern: "Order.toship.*.xlsx"}))
	assert.Equal(t, shoplist.KindUnexpected, shoplist.Classify(errors.New("boom")))
	assert.Equal(t, shoplist.KindUnexpected, shoplist.Classify(&shoplist.UnexpectedError{Err: errors.New("boom")}))

	remote := &shoplist.LoadError{Side: shoplist.SideRemote, Source: "u", Err: errors.New("x")}
	local := &shoplist.LoadError{Side: shoplist.SideLocal, Source: "p", Err: errors.New("x")}
	assert.NotEqual(t, shoplist.Hints(remote), shoplist.Hints(local))
	assert.Contains(t, shoplist.Hints(remote)[1], "Raw")

	mappingFile := &shoplist.LoadError{Side: shoplist.SideMappingFile, Source: "map.xlsx", Err: errors.New("x")}
	assert.Contains(t, shoplist.Hints(mappingFile)[0], "對應表")
	assert.NotContains(t, strings.Join(shoplist.Hints(mappingFile), "\n"), "訂單")
}
