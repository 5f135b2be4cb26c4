package event

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
)

// TestNewBus 测试创建新的事件总线
func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() 返回 nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() handlers map 未初始化")
	}
}

// TestSubscribeAndPublish 测试订阅和发布事件
func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	got := make(chan any, 1)
	bus.Subscribe(EventAttackStart, func(event any) {
		got <- event
	})

	bus.Publish(EventAttackStart, "hello")
	bus.Wait()

	if received := <-got; received != "hello" {
		t.Errorf("handler 收到 %v, 期望 %v", received, "hello")
	}
}

// TestPublishNoSubscribers 测试发布无订阅者的事件不会 panic
func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("nonexistent", "data")
	bus.Wait()

	var nilBus *Bus
	nilBus.Publish(EventEnemyLost, nil)
}

// TestMultipleSubscribers 测试多个订阅者
func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	var count atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe(EventProjectileSpawn, func(event any) {
			count.Add(1)
		})
	}

	bus.Publish(EventProjectileSpawn, &ProjectileEvent{})
	bus.Wait()

	if count.Load() != 3 {
		t.Errorf("handler 被调用 %d 次, 期望 3 次", count.Load())
	}
}

// TestMultipleEvents 测试不同事件名称互不干扰
func TestMultipleEvents(t *testing.T) {
	bus := NewBus()
	var spotted, lost atomic.Bool

	bus.Subscribe(EventEnemySpotted, func(event any) {
		spotted.Store(true)
	})
	bus.Subscribe(EventEnemyLost, func(event any) {
		lost.Store(true)
	})

	bus.Publish(EventEnemySpotted, &EnemyEvent{EnemyID: 1})
	bus.Wait()

	if !spotted.Load() {
		t.Error("enemy.spotted handler 应该被调用")
	}
	if lost.Load() {
		t.Error("enemy.lost handler 不应该被调用")
	}
}

// TestHandlerPanicRecovered 测试 handler panic 不影响其他订阅者
func TestHandlerPanicRecovered(t *testing.T) {
	bus := NewBus()
	var ok atomic.Bool
	bus.Subscribe(EventAssetFallback, func(event any) {
		panic("boom")
	})
	bus.Subscribe(EventAssetFallback, func(event any) {
		ok.Store(true)
	})

	bus.Publish(EventAssetFallback, &AssetEvent{Ref: "knight"})
	bus.Wait()

	if !ok.Load() {
		t.Error("panic 之后其他 handler 应该仍被调用")
	}
}

// TestConcurrentSubscribeAndPublish 测试并发订阅和发布的线程安全性
func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	bus.Subscribe("test", func(event any) {
		count.Add(1)
	})

	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("test", "data")
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe("test", func(event any) {
				count.Add(1)
			})
		}()
	}

	wg.Wait()
	bus.Wait()

	if count.Load() < 100 {
		t.Errorf("至少应该收到 100 次事件, 实际收到 %d 次", count.Load())
	}
}

// TestPublishEventData 测试事件数据正确传递
func TestPublishEventData(t *testing.T) {
	bus := NewBus()
	got := make(chan *AttackEvent, 1)
	bus.Subscribe(EventAttackEnd, func(event any) {
		got <- event.(*AttackEvent)
	})

	sent := &AttackEvent{Cycle: 42}
	bus.Publish(EventAttackEnd, sent)
	bus.Wait()

	received := <-got
	if received.Cycle != 42 {
		t.Errorf("收到 %+v, 期望 %+v", received, sent)
	}
}

// TestOnFiltersPayloadType 测试 On 只把匹配类型的负载交给处理函数
func TestOnFiltersPayloadType(t *testing.T) {
	bus := NewBus()
	got := make(chan uuid.UUID, 2)
	On(bus, EventProjectileRetire, func(evt *ProjectileEvent) {
		got <- evt.ID
	})

	id := uuid.New()
	bus.Publish(EventProjectileRetire, "not a projectile")
	bus.Publish(EventProjectileRetire, &ProjectileEvent{ID: id})
	bus.Wait()

	if len(got) != 1 {
		t.Fatalf("处理函数被调用 %d 次, 期望 1 次", len(got))
	}
	if received := <-got; received != id {
		t.Errorf("收到 ID %s, 期望 %s", received, id)
	}
}
