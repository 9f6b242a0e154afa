package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warungpos/internal/domain"
	"warungpos/internal/services"
	"warungpos/internal/store"
)

func authFixture(t *testing.T) (store.Store, *services.AuthService, *services.SessionManager) {
	t.Helper()
	st, err := store.OpenMem()
	require.NoError(t, err)

	auth := services.NewAuthService(st)
	require.NoError(t, auth.Register(context.Background(), "ibu@warung.test", "Passw0rd!"))

	sm := services.NewSessionManager(st)
	return st, auth, sm
}

func TestRegisterAndLogin(t *testing.T) {
	_, auth, _ := authFixture(t)
	ctx := context.Background()

	uid, err := auth.Login(ctx, "sid-1", "ibu@warung.test", "Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	got, ok := auth.CurrentUser("sid-1")
	require.True(t, ok)
	require.Equal(t, uid, got)

	st := auth.State().Get()
	require.Equal(t, services.StatusAuthenticated, st.Status)
	require.Equal(t, uid, st.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, auth, _ := authFixture(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, "sid-1", "ibu@warung.test", "wrong-pass1A")
	require.ErrorIs(t, err, services.ErrBadCreds)
	_, err = auth.Login(ctx, "sid-1", "nobody@warung.test", "Passw0rd!")
	require.ErrorIs(t, err, services.ErrBadCreds)

	require.Equal(t, services.StatusError, auth.State().Get().Status)
	auth.ClearError()
	require.Equal(t, services.StatusUnauthenticated, auth.State().Get().Status)

	_, ok := auth.CurrentUser("sid-1")
	require.False(t, ok)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, auth, _ := authFixture(t)
	err := auth.Register(context.Background(), "ibu@warung.test", "Passw0rd!")
	require.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestSessionLifecycleFollowsAuthStream(t *testing.T) {
	st, auth, sm := authFixture(t)
	ctx := context.Background()

	stop := sm.Bind(ctx, auth)
	defer stop()

	uid, err := auth.Login(ctx, "sid-1", "ibu@warung.test", "Passw0rd!")
	require.NoError(t, err)

	sess := waitSession(t, sm, uid)
	require.Equal(t, uid, sess.UserID)

	// session state is live: a product add shows up in the cache
	_, err = st.AddProduct(ctx, domain.Product{Name: "Kopi", Price: 1500, Stock: 3, UserID: uid})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(sess.Catalog.Products()) == 1
	}, time.Second, 5*time.Millisecond)

	sess.Cart.Add(sess.Catalog.Products()[0])
	require.Len(t, sess.Cart.Items(), 1)

	auth.Logout("sid-1")
	require.Eventually(t, func() bool {
		_, ok := sm.Get(uid)
		return !ok
	}, time.Second, 5*time.Millisecond)

	// sign-out cleared the cart and the cache
	require.Empty(t, sess.Cart.Items())
	require.Empty(t, sess.Catalog.Products())
}

func TestConcurrentUsersKeepIndependentSessions(t *testing.T) {
	st, auth, sm := authFixture(t)
	ctx := context.Background()
	require.NoError(t, auth.Register(ctx, "pak@warung.test", "Passw0rd!"))

	stop := sm.Bind(ctx, auth)
	defer stop()

	uidA, err := auth.Login(ctx, "sid-a", "ibu@warung.test", "Passw0rd!")
	require.NoError(t, err)
	sessA := waitSession(t, sm, uidA)

	_, err = st.AddProduct(ctx, domain.Product{Name: "Kopi", Price: 1500, Stock: 3, UserID: uidA})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(sessA.Catalog.Products()) == 1
	}, time.Second, 5*time.Millisecond)
	sessA.Cart.Add(sessA.Catalog.Products()[0])

	// a second user's sign-in must not touch the first user's session
	uidB, err := auth.Login(ctx, "sid-b", "pak@warung.test", "Passw0rd!")
	require.NoError(t, err)
	sessB := waitSession(t, sm, uidB)
	require.NotSame(t, sessA, sessB)

	_, ok := auth.CurrentUser("sid-a")
	require.True(t, ok)
	got, ok := sm.Get(uidA)
	require.True(t, ok)
	require.Same(t, sessA, got)
	require.Len(t, sessA.Cart.Items(), 1)

	// nor must the second user's sign-out
	auth.Logout("sid-b")
	require.Eventually(t, func() bool {
		_, ok := sm.Get(uidB)
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok = sm.Get(uidA)
	require.True(t, ok)
	require.Len(t, sessA.Cart.Items(), 1)
	require.Len(t, sessA.Catalog.Products(), 1)
}

func TestOnSessionStartIsIdempotent(t *testing.T) {
	_, auth, sm := authFixture(t)
	ctx := context.Background()

	uid, err := auth.Login(ctx, "sid-1", "ibu@warung.test", "Passw0rd!")
	require.NoError(t, err)

	a, err := sm.OnSessionStart(ctx, uid)
	require.NoError(t, err)
	b, err := sm.OnSessionStart(ctx, uid)
	require.NoError(t, err)
	require.Same(t, a, b)
}

func waitSession(t *testing.T, sm *services.SessionManager, uid string) *services.Session {
	t.Helper()
	var sess *services.Session
	require.Eventually(t, func() bool {
		s, ok := sm.Get(uid)
		sess = s
		return ok
	}, time.Second, 5*time.Millisecond)
	return sess
}
